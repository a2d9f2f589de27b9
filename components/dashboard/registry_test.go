package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryCoversEveryType(t *testing.T) {
	reg := NewRegistry()
	for _, typ := range AllWidgetTypes() {
		entry, ok := reg.Entry(typ)
		require.True(t, ok, "missing %s", typ)
		assert.True(t, entry.DefaultSize.Within(entry.MinSize, entry.MaxSize), typ)
		assert.NotEmpty(t, entry.Title)
	}
	assert.Len(t, reg.Entries(), len(AllWidgetTypes()))
}

func TestRegistryRegisterValidates(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register(CatalogEntry{Type: "weather", Title: "Weather", DefaultSize: SizeSmall, MinSize: SizeSmall, MaxSize: SizeSmall})
	assert.ErrorIs(t, err, ErrUnknownWidgetType)

	err = reg.Register(CatalogEntry{Type: TypeTotalDreams, Title: "Dreams", DefaultSize: "tiny", MinSize: SizeSmall, MaxSize: SizeLarge})
	assert.ErrorIs(t, err, ErrInvalidSize)

	err = reg.Register(CatalogEntry{Type: TypeTotalDreams, Title: "Dreams", DefaultSize: SizeLarge, MinSize: SizeSmall, MaxSize: SizeMedium})
	assert.Error(t, err)

	err = reg.Register(CatalogEntry{Type: TypeTotalDreams, Title: "Dreams", DefaultSize: SizeSmall, MinSize: SizeLarge, MaxSize: SizeSmall})
	assert.Error(t, err)
}

func TestSelectableHidesPresentSingletons(t *testing.T) {
	reg := NewRegistry()

	all := Selectable(reg, nil)
	assert.Len(t, all, len(AllWidgetTypes()))

	filtered := Selectable(reg, []WidgetType{TypeRequestWidget, TypeTotalDreams})
	types := make([]WidgetType, len(filtered))
	for i, entry := range filtered {
		types[i] = entry.Type
	}
	assert.NotContains(t, types, TypeRequestWidget)
	assert.Contains(t, types, TypeTotalDreams)

	assert.Nil(t, Selectable(nil, nil))
}

func TestWidgetTypeValid(t *testing.T) {
	assert.True(t, TypeCategoryChart.Valid())
	assert.False(t, WidgetType("legacy_widget").Valid())
}
