package dashboard

func countEntry(t WidgetType, title, titleES, description, icon string) CatalogEntry {
	return CatalogEntry{
		Type:           t,
		Kind:           KindCount,
		Title:          title,
		TitleLocalized: map[string]string{"es": titleES},
		Description:    description,
		Icon:           icon,
		DefaultSize:    SizeSmall,
		MinSize:        SizeSmall,
		MaxSize:        SizeMedium,
	}
}

func distributionEntry(t WidgetType, title, titleES, description, icon string) CatalogEntry {
	return CatalogEntry{
		Type:           t,
		Kind:           KindDistribution,
		Title:          title,
		TitleLocalized: map[string]string{"es": titleES},
		Description:    description,
		Icon:           icon,
		DefaultSize:    SizeMedium,
		MinSize:        SizeSmall,
		MaxSize:        SizeLarge,
		Schema:         rankedListSchema(),
	}
}

func chartEntry(t WidgetType, title, titleES, description, icon string) CatalogEntry {
	return CatalogEntry{
		Type:           t,
		Kind:           KindChart,
		Title:          title,
		TitleLocalized: map[string]string{"es": titleES},
		Description:    description,
		Icon:           icon,
		DefaultSize:    SizeLarge,
		MinSize:        SizeMedium,
		MaxSize:        SizeLarge,
		Schema:         chartConfigSchema(),
	}
}

var defaultCatalogEntries = []CatalogEntry{
	countEntry(TypeTotalDreams, "Total Dreams", "Sueños totales", "Dreams recorded across all clients", "moon"),
	countEntry(TypeTotalClients, "Total Clients", "Clientes totales", "Clients enrolled on the platform", "users"),
	countEntry(TypeTotalSessions, "Total Sessions", "Sesiones totales", "Therapy sessions held", "calendar"),
	countEntry(TypeTotalAmplifications, "Total Amplifications", "Amplificaciones totales", "Symbol amplifications written", "sparkles"),
	countEntry(TypeTotalJournalEntries, "Journal Entries", "Entradas de diario", "Journal entries written", "book-open"),
	countEntry(TypeTotalTestResults, "Test Results", "Resultados de pruebas", "Psychological test results submitted", "clipboard-check"),
	distributionEntry(TypeSymbolDistribution, "Top Symbols", "Símbolos principales", "Most frequent dream symbols", "hash"),
	distributionEntry(TypeTestDistribution, "Tests Taken", "Pruebas realizadas", "Test results grouped by test type", "list-checks"),
	distributionEntry(TypeCategoryDistribution, "Dream Categories", "Categorías de sueños", "Dreams grouped by category", "tags"),
	chartEntry(TypeSymbolChart, "Symbol Frequency", "Frecuencia de símbolos", "Bar chart of the most frequent symbols", "bar-chart"),
	chartEntry(TypeTestChart, "Test Breakdown", "Desglose de pruebas", "Pie chart of test results by type", "pie-chart"),
	chartEntry(TypeCategoryChart, "Category Breakdown", "Desglose de categorías", "Pie chart of dreams by category", "pie-chart"),
	{
		Type:           TypeRequestWidget,
		Kind:           KindRequest,
		Title:          "Request a Widget",
		TitleLocalized: map[string]string{"es": "Solicitar un widget"},
		Description:    "Ask the team for a new dashboard widget",
		Icon:           "plus-circle",
		DefaultSize:    SizeSmall,
		MinSize:        SizeSmall,
		MaxSize:        SizeMedium,
		Singleton:      true,
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"contact_email": map[string]any{"type": "string", "minLength": 3},
			},
			"additionalProperties": false,
		},
	},
}

// maxConfigLimit bounds the "limit" override on ranked widgets.
const maxConfigLimit = 50

func rankedListSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"limit": map[string]any{"type": "integer", "minimum": 1, "maximum": maxConfigLimit},
		},
		"additionalProperties": false,
	}
}

func chartConfigSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"limit":    map[string]any{"type": "integer", "minimum": 1, "maximum": maxConfigLimit},
			"subtitle": map[string]any{"type": "string"},
			"theme": map[string]any{
				"type": "string",
				"enum": chartThemes(),
			},
		},
		"additionalProperties": false,
	}
}

// DefaultCatalogEntries returns copies of built-in catalog entries.
func DefaultCatalogEntries() []CatalogEntry {
	out := make([]CatalogEntry, len(defaultCatalogEntries))
	copy(out, defaultCatalogEntries)
	return out
}
