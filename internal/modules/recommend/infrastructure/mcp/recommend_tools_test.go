package mcp

import (
	"context"
	"testing"

	"ShopRec/internal/modules/interaction/domain/event"
	"ShopRec/internal/modules/recommend/application/dto/respond"
	"ShopRec/pkg/xerr"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecommendService struct {
	lastProduct int64
	lastUser    int64
	lastQuery   string
}

func (s *stubRecommendService) SimilarToProduct(ctx context.Context, productID int64) ([]respond.ProductBrief, error) {
	s.lastProduct = productID
	if productID == 404 {
		return nil, xerr.New(xerr.NotFound, "商品不存在")
	}
	return []respond.ProductBrief{{Id: 2, Name: "Ultrabook"}}, nil
}

func (s *stubRecommendService) Search(ctx context.Context, text string) ([]respond.ProductBrief, error) {
	s.lastQuery = text
	return []respond.ProductBrief{{Id: 3, Name: "Tablet"}}, nil
}

func (s *stubRecommendService) CartContext(ctx context.Context, userID int64) ([]respond.CartRecommendation, error) {
	s.lastUser = userID
	return []respond.CartRecommendation{}, nil
}

func (s *stubRecommendService) TopPicks(ctx context.Context) ([]respond.ProductBrief, error) {
	return []respond.ProductBrief{}, nil
}

func (s *stubRecommendService) ForUser(ctx context.Context, userID int64) (*respond.PersonalRespond, error) {
	return &respond.PersonalRespond{}, nil
}

func (s *stubRecommendService) Popular(ctx context.Context, n int) ([]respond.PopularItem, error) {
	return nil, nil
}

func (s *stubRecommendService) ApplyEvent(ctx context.Context, e event.InteractionEvent) error {
	return nil
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestInt64Arg(t *testing.T) {
	id, err := int64Arg(callRequest(map[string]interface{}{"product_id": float64(7)}), "product_id")
	require.NoError(t, err)
	assert.EqualValues(t, 7, id)

	for name, v := range map[string]interface{}{
		"fraction": 1.5,
		"negative": float64(-3),
		"zero":     0,
		"string":   "7",
	} {
		_, err := int64Arg(callRequest(map[string]interface{}{"product_id": v}), "product_id")
		assert.Error(t, err, name)
	}

	_, err = int64Arg(callRequest(map[string]interface{}{}), "product_id")
	assert.EqualError(t, err, "product_id is required")
}

func TestRecommendToolHandler(t *testing.T) {
	svc := &stubRecommendService{}
	h := NewRecommendToolHandler(svc)
	ctx := context.Background()

	res, err := h.handleSimilar(ctx, callRequest(map[string]interface{}{"product_id": float64(1)}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.EqualValues(t, 1, svc.lastProduct)

	res, err = h.handleSimilar(ctx, callRequest(map[string]interface{}{"product_id": float64(404)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.handleSearch(ctx, callRequest(map[string]interface{}{"query": "  "}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.handleSearch(ctx, callRequest(map[string]interface{}{"query": "stylus"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "stylus", svc.lastQuery)

	res, err = h.handleCart(ctx, callRequest(map[string]interface{}{"user_id": float64(5)}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.EqualValues(t, 5, svc.lastUser)

	res, err = h.handleTopPicks(ctx, callRequest(nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)
}

func TestNewRecommendMCPServer(t *testing.T) {
	s := NewRecommendMCPServer("shoprec", "1.0.0", &stubRecommendService{})
	require.NotNil(t, s)
	tools := s.ListTools()
	assert.Len(t, tools, 4)
	assert.Contains(t, tools, "recommend_similar_products")
	assert.Contains(t, tools, "cart_recommendations")
}
