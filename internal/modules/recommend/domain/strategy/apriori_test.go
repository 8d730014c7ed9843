package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePairs() []BasketPair {
	return []BasketPair{
		{UserID: 1, ProductID: 1}, {UserID: 1, ProductID: 2},
		{UserID: 2, ProductID: 2}, {UserID: 2, ProductID: 1}, {UserID: 2, ProductID: 1},
		{UserID: 3, ProductID: 1}, {UserID: 3, ProductID: 2}, {UserID: 3, ProductID: 3},
		{UserID: 4, ProductID: 3}, {UserID: 4, ProductID: 4},
		{UserID: 5, ProductID: 4},
	}
}

func TestBuildBaskets(t *testing.T) {
	baskets := BuildBaskets(samplePairs())
	assert.Equal(t, [][]int64{{1, 2}, {1, 2}, {1, 2, 3}, {3, 4}, {4}}, baskets)
	assert.Empty(t, BuildBaskets(nil))
}

func TestApriori(t *testing.T) {
	sets := Apriori(BuildBaskets(samplePairs()), 0.2, 0)

	got := make(map[string]int, len(sets))
	for _, s := range sets {
		got[itemsKey(s.Items)] = s.Count
	}
	assert.Equal(t, map[string]int{
		"1": 3, "2": 3, "3": 2, "4": 2,
		"1,2": 3, "1,3": 1, "2,3": 1, "3,4": 1,
		"1,2,3": 1,
	}, got)

	// 更高的阈值只剩高频项
	sets = Apriori(BuildBaskets(samplePairs()), 0.5, 0)
	keys := make([]string, 0, len(sets))
	for _, s := range sets {
		keys = append(keys, itemsKey(s.Items))
	}
	assert.Equal(t, []string{"1", "2", "1,2"}, keys)
}

func TestApriori_MaxLen(t *testing.T) {
	sets := Apriori(BuildBaskets(samplePairs()), 0.2, 2)
	for _, s := range sets {
		assert.LessOrEqual(t, len(s.Items), 2)
	}
}

func TestApriori_Empty(t *testing.T) {
	assert.Empty(t, Apriori(nil, 0.2, 0))
	assert.Empty(t, AssociationRules(nil, 0, 1.1))
}

func TestAssociationRules(t *testing.T) {
	baskets := BuildBaskets(samplePairs())
	rules := AssociationRules(Apriori(baskets, 0.2, 0), len(baskets), 1.1)
	require.Len(t, rules, 8)

	for _, r := range rules {
		assert.GreaterOrEqual(t, r.Lift, 1.1)
	}

	first := rules[0]
	assert.Equal(t, []int64{1}, first.Antecedent)
	assert.Equal(t, []int64{2}, first.Consequent)
	assert.InDelta(t, 1.0, first.Confidence, 1e-9)
	assert.InDelta(t, 5.0/3.0, first.Lift, 1e-9)
	assert.InDelta(t, 0.6, first.Support, 1e-9)

	last := rules[len(rules)-1]
	assert.Equal(t, []int64{4}, last.Antecedent)
	assert.Equal(t, []int64{3}, last.Consequent)
	assert.InDelta(t, 1.25, last.Lift, 1e-9)

	assert.Equal(t, []int64{2, 1, 3, 4}, TopConsequents(rules))
}

func TestAssociationRules_NoLift(t *testing.T) {
	// 所有用户买同样的东西，lift 恒为 1
	pairs := []BasketPair{
		{UserID: 1, ProductID: 10}, {UserID: 1, ProductID: 11},
		{UserID: 2, ProductID: 10}, {UserID: 2, ProductID: 11},
	}
	baskets := BuildBaskets(pairs)
	rules := AssociationRules(Apriori(baskets, 0.2, 0), len(baskets), 1.1)
	assert.Empty(t, rules)
	assert.Empty(t, TopConsequents(rules))
}
