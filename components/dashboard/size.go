package dashboard

// WidgetSize is the footprint of a widget on the grid.
type WidgetSize string

const (
	SizeSmall  WidgetSize = "small"
	SizeMedium WidgetSize = "medium"
	SizeLarge  WidgetSize = "large"
)

// GridColumns is the fixed column count of the dashboard grid.
const GridColumns = 4

var sizeCycle = []WidgetSize{SizeSmall, SizeMedium, SizeLarge}

// Valid reports whether s is one of the three known sizes.
func (s WidgetSize) Valid() bool {
	return s.rank() >= 0
}

func (s WidgetSize) rank() int {
	for i, size := range sizeCycle {
		if size == s {
			return i
		}
	}
	return -1
}

// Within reports whether s falls inside [min, max]. Invalid bounds are treated as open.
func (s WidgetSize) Within(min, max WidgetSize) bool {
	r := s.rank()
	if r < 0 {
		return false
	}
	if lo := min.rank(); lo >= 0 && r < lo {
		return false
	}
	if hi := max.rank(); hi >= 0 && r > hi {
		return false
	}
	return true
}

// NextSize returns the size following current in the small → medium → large → small
// cycle, skipping sizes outside [min, max]. When no other legal size exists current
// is returned unchanged.
func NextSize(current, min, max WidgetSize) WidgetSize {
	start := current.rank()
	if start < 0 {
		start = len(sizeCycle) - 1
	}
	for step := 1; step <= len(sizeCycle); step++ {
		candidate := sizeCycle[(start+step)%len(sizeCycle)]
		if candidate.Within(min, max) {
			return candidate
		}
	}
	return current
}

// GridPlacement is the column/row span a widget occupies.
type GridPlacement struct {
	ColSpan int `json:"col_span"`
	RowSpan int `json:"row_span"`
}

// Placement maps a size to its grid span. It depends on size alone; packing is left to
// the grid's auto-flow.
func Placement(size WidgetSize) GridPlacement {
	switch size {
	case SizeMedium:
		return GridPlacement{ColSpan: 2, RowSpan: 1}
	case SizeLarge:
		return GridPlacement{ColSpan: 2, RowSpan: 2}
	default:
		return GridPlacement{ColSpan: 1, RowSpan: 1}
	}
}

// ListLimit is the number of distribution rows shown for a size.
func ListLimit(size WidgetSize) int {
	switch size {
	case SizeMedium:
		return 10
	case SizeLarge:
		return 15
	default:
		return 5
	}
}

// ChartLimit is the number of chart points plotted for a size.
func ChartLimit(size WidgetSize) int {
	switch size {
	case SizeLarge:
		return 20
	case SizeMedium:
		return 10
	default:
		return 5
	}
}
