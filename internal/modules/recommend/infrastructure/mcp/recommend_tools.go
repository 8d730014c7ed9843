package mcp

import (
	"context"
	"fmt"
	"math"
	"strings"

	"ShopRec/internal/modules/recommend/application/service"
	"ShopRec/pkg/zlog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// NewRecommendMCPServer 创建 MCP Server 并注册推荐工具
func NewRecommendMCPServer(name, version string, svc service.RecommendService) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
	)
	NewRecommendToolHandler(svc).RegisterTools(s)
	return s
}

type RecommendToolHandler struct {
	svc service.RecommendService
}

func NewRecommendToolHandler(svc service.RecommendService) *RecommendToolHandler {
	return &RecommendToolHandler{svc: svc}
}

func (h *RecommendToolHandler) RegisterTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("recommend_similar_products",
		mcp.WithDescription("按商品描述的语义相似度推荐相似商品，不包含该商品本身"),
		mcp.WithNumber("product_id", mcp.Required(), mcp.Description("商品ID")),
	), h.handleSimilar)

	s.AddTool(mcp.NewTool("search_products",
		mcp.WithDescription("用自然语言搜索商品，返回语义最相关的商品"),
		mcp.WithString("query", mcp.Required(), mcp.Description("搜索内容")),
	), h.handleSearch)

	s.AddTool(mcp.NewTool("top_picks",
		mcp.WithDescription("基于购物篮关联规则挖掘出的热门搭配商品"),
	), h.handleTopPicks)

	s.AddTool(mcp.NewTool("cart_recommendations",
		mcp.WithDescription("根据用户最后加购的商品，推荐同类目、价格相近且不在购物车中的商品"),
		mcp.WithNumber("user_id", mcp.Required(), mcp.Description("用户ID")),
	), h.handleCart)
}

func (h *RecommendToolHandler) handleSimilar(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := int64Arg(request, "product_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := h.svc.SimilarToProduct(ctx, id)
	if err != nil {
		zlog.Warn("mcp recommend_similar_products failed", zap.Int64("product_id", id), zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("推荐失败：%v", err)), nil
	}
	return mcp.NewToolResultJSON(map[string]interface{}{"recommended_products": items})
}

func (h *RecommendToolHandler) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format, expected map"), nil
	}
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	items, err := h.svc.Search(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("搜索失败：%v", err)), nil
	}
	return mcp.NewToolResultJSON(map[string]interface{}{"search_results": items})
}

func (h *RecommendToolHandler) handleTopPicks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := h.svc.TopPicks(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("查询失败：%v", err)), nil
	}
	return mcp.NewToolResultJSON(map[string]interface{}{"top_picks": items})
}

func (h *RecommendToolHandler) handleCart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := int64Arg(request, "user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := h.svc.CartContext(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("推荐失败：%v", err)), nil
	}
	return mcp.NewToolResultJSON(map[string]interface{}{"cart_recommendations": items})
}

// int64Arg JSON 数字解码为 float64，必须是正整数
func int64Arg(request mcp.CallToolRequest, key string) (int64, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("invalid arguments format, expected map")
	}
	switch v := args[key].(type) {
	case float64:
		if v <= 0 || v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be a positive integer", key)
		}
		return int64(v), nil
	case int:
		if v <= 0 {
			return 0, fmt.Errorf("%s must be a positive integer", key)
		}
		return int64(v), nil
	case int64:
		if v <= 0 {
			return 0, fmt.Errorf("%s must be a positive integer", key)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("%s is required", key)
	}
}
