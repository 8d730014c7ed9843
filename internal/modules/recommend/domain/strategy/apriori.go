package strategy

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// BasketPair user_cart 中的一行 (user_id, product_id)
type BasketPair struct {
	UserID    int64
	ProductID int64
}

// Itemset 频繁项集，Items 升序
type Itemset struct {
	Items   []int64
	Count   int
	Support float64
}

// Rule 关联规则 Antecedent => Consequent
type Rule struct {
	Antecedent []int64 `json:"antecedent"`
	Consequent []int64 `json:"consequent"`
	Support    float64 `json:"support"`
	Confidence float64 `json:"confidence"`
	Lift       float64 `json:"lift"`
}

// rule enumeration 使用位掩码，超过该长度的项集只参与频繁项集统计
const maxRuleItemsetLen = 20

const floatEps = 1e-9

// BuildBaskets 把 (user, product) 行透视成 用户×商品 的 0/1 矩阵，
// 每个用户一个去重升序的篮子；用户按 id 升序。
func BuildBaskets(pairs []BasketPair) [][]int64 {
	byUser := make(map[int64]map[int64]struct{})
	for _, p := range pairs {
		set := byUser[p.UserID]
		if set == nil {
			set = make(map[int64]struct{})
			byUser[p.UserID] = set
		}
		set[p.ProductID] = struct{}{}
	}

	users := make([]int64, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })

	baskets := make([][]int64, 0, len(users))
	for _, u := range users {
		items := make([]int64, 0, len(byUser[u]))
		for id := range byUser[u] {
			items = append(items, id)
		}
		sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })
		baskets = append(baskets, items)
	}
	return baskets
}

// Apriori 逐层生成候选并按支持度剪枝。maxLen<=0 表示不限长度。
// 返回结果按 (长度, 项) 升序。
func Apriori(baskets [][]int64, minSupport float64, maxLen int) []Itemset {
	n := len(baskets)
	if n == 0 {
		return []Itemset{}
	}
	sets := make([]map[int64]struct{}, n)
	for i, b := range baskets {
		m := make(map[int64]struct{}, len(b))
		for _, id := range b {
			m[id] = struct{}{}
		}
		sets[i] = m
	}
	frequent := func(count int) bool {
		return float64(count)/float64(n) >= minSupport-floatEps
	}

	// L1
	singles := make(map[int64]int)
	for _, s := range sets {
		for id := range s {
			singles[id]++
		}
	}
	var level []Itemset
	for id, c := range singles {
		if frequent(c) {
			level = append(level, Itemset{Items: []int64{id}, Count: c, Support: float64(c) / float64(n)})
		}
	}
	sortItemsets(level)

	out := append([]Itemset{}, level...)
	for k := 2; len(level) > 1 && (maxLen <= 0 || k <= maxLen); k++ {
		prev := make(map[string]struct{}, len(level))
		for _, it := range level {
			prev[itemsKey(it.Items)] = struct{}{}
		}

		var next []Itemset
		for _, cand := range joinLevel(level) {
			if !allSubsetsFrequent(cand, prev) {
				continue
			}
			c := 0
			for _, s := range sets {
				if containsAll(s, cand) {
					c++
				}
			}
			if frequent(c) {
				next = append(next, Itemset{Items: cand, Count: c, Support: float64(c) / float64(n)})
			}
		}
		sortItemsets(next)
		out = append(out, next...)
		level = next
	}
	return out
}

// AssociationRules 对每个长度>=2 的频繁项集枚举全部非空真子集作为前件，
// 保留 lift >= minLift 的规则。排序：lift、confidence、support 降序，再按前件、后件。
func AssociationRules(itemsets []Itemset, total int, minLift float64) []Rule {
	if total <= 0 {
		return []Rule{}
	}
	counts := make(map[string]int, len(itemsets))
	for _, it := range itemsets {
		counts[itemsKey(it.Items)] = it.Count
	}

	rules := make([]Rule, 0)
	for _, it := range itemsets {
		k := len(it.Items)
		if k < 2 || k > maxRuleItemsetLen {
			continue
		}
		for mask := 1; mask < (1<<k)-1; mask++ {
			ante := make([]int64, 0, k)
			cons := make([]int64, 0, k)
			for i, id := range it.Items {
				if mask&(1<<i) != 0 {
					ante = append(ante, id)
				} else {
					cons = append(cons, id)
				}
			}
			ca, okA := counts[itemsKey(ante)]
			cc, okC := counts[itemsKey(cons)]
			if !okA || !okC || ca == 0 || cc == 0 {
				continue
			}
			confidence := float64(it.Count) / float64(ca)
			lift := float64(it.Count*total) / float64(ca*cc)
			if lift < minLift-floatEps {
				continue
			}
			rules = append(rules, Rule{
				Antecedent: ante,
				Consequent: cons,
				Support:    it.Support,
				Confidence: confidence,
				Lift:       lift,
			})
		}
	}

	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if c := cmpFloat(a.Lift, b.Lift); c != 0 {
			return c > 0
		}
		if c := cmpFloat(a.Confidence, b.Confidence); c != 0 {
			return c > 0
		}
		if c := cmpFloat(a.Support, b.Support); c != 0 {
			return c > 0
		}
		if c := compareItems(a.Antecedent, b.Antecedent); c != 0 {
			return c < 0
		}
		return compareItems(a.Consequent, b.Consequent) < 0
	})
	return rules
}

// TopConsequents 按规则顺序展开后件并去重
func TopConsequents(rules []Rule) []int64 {
	seen := make(map[int64]struct{})
	out := make([]int64, 0)
	for _, r := range rules {
		for _, id := range r.Consequent {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// joinLevel 合并前 k-2 项相同的两个 (k-1) 项集
func joinLevel(level []Itemset) [][]int64 {
	var out [][]int64
	for i := 0; i < len(level); i++ {
		a := level[i].Items
		for j := i + 1; j < len(level); j++ {
			b := level[j].Items
			if !samePrefix(a, b) {
				break
			}
			cand := make([]int64, len(a)+1)
			copy(cand, a)
			cand[len(a)] = b[len(b)-1]
			out = append(out, cand)
		}
	}
	return out
}

func samePrefix(a, b []int64) bool {
	for i := 0; i < len(a)-1; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func allSubsetsFrequent(cand []int64, prev map[string]struct{}) bool {
	sub := make([]int64, 0, len(cand)-1)
	for skip := range cand {
		sub = sub[:0]
		for i, id := range cand {
			if i != skip {
				sub = append(sub, id)
			}
		}
		if _, ok := prev[itemsKey(sub)]; !ok {
			return false
		}
	}
	return true
}

func containsAll(set map[int64]struct{}, items []int64) bool {
	for _, id := range items {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}

func sortItemsets(sets []Itemset) {
	sort.Slice(sets, func(i, j int) bool {
		return compareItems(sets[i].Items, sets[j].Items) < 0
	})
}

func compareItems(a, b []int64) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func cmpFloat(a, b float64) int {
	if math.Abs(a-b) <= floatEps {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

func itemsKey(items []int64) string {
	var sb strings.Builder
	for i, id := range items {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(id, 10))
	}
	return sb.String()
}
