package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func names(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

func TestItemFilter_InstitutionAndStatus(t *testing.T) {
	f := ItemFilter{Institution: InstitutionIIITA, Status: StatusLost}
	got := f.Apply(DemoItems())
	assert.Equal(t, []string{"Blue Water Bottle", "Mathematics Textbook"}, names(got))
}

func TestItemFilter_HidesResolvedByDefault(t *testing.T) {
	f := ItemFilter{Institution: InstitutionIIITH}
	assert.Equal(t, []string{"Found: Silver Ring"}, names(f.Apply(DemoItems())))

	f.ShowResolved = true
	assert.Equal(t, []string{"Lost ID Card", "Found: Silver Ring"}, names(f.Apply(DemoItems())))
}

func TestItemFilter_Category(t *testing.T) {
	f := ItemFilter{Category: "Electronics"}
	assert.Equal(t, []string{"Found: Black Headphones"}, names(f.Apply(DemoItems())))

	f.Category = CategoryAll
	assert.Len(t, f.Apply(DemoItems()), 7)
}

func TestItemFilter_ZeroValue(t *testing.T) {
	var f ItemFilter
	got := f.Apply(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSplitByStatus_PreservesOrder(t *testing.T) {
	f := ItemFilter{Institution: InstitutionIIITA}
	lost, found := SplitByStatus(f.Apply(DemoItems()))
	assert.Equal(t, []string{"Blue Water Bottle", "Mathematics Textbook"}, names(lost))
	assert.Equal(t, []string{"Found: Black Headphones"}, names(found))
}
