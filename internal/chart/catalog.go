package chart

import "github.com/user/survey-charts-go/internal/models"

// Anchors of the survey page, one per chart.
const (
	AnchorBenefits     = "benefits"
	AnchorLeave        = "leave"
	AnchorProductivity = "productivity"
	AnchorDisorders    = "disorders"
	AnchorResponse     = "response"
)

// Indices into the loaded data blocks.
const (
	BlockBenefits = iota
	BlockLeave
	BlockProductivity
	BlockDisorders
	BlockResponse
)

const countLabel = "Count"

// DefaultAnchors lists the anchors present on the survey page.
var DefaultAnchors = []string{
	AnchorBenefits,
	AnchorLeave,
	AnchorProductivity,
	AnchorDisorders,
	AnchorResponse,
}

// BenefitsRows are the inline counts for the insurance coverage pie.
func BenefitsRows() []models.Row {
	return []models.Row{
		{X: "Yes", Total: 531},
		{X: "No", Total: 213},
		{X: "I don't know", Total: 319},
		{X: "Not Eligible / N/A", Total: 83},
	}
}

// Defaults returns freshly built descriptors for the five survey charts.
func Defaults() []ChartDescriptor {
	return []ChartDescriptor{
		{
			Title: "Company Insurance Covers Mental Health Benefits",
			Kind:  KindPie,
			Data:  Literal(BenefitsRows()...),
			Colors: []string{
				"rgb(63, 188, 210)",
				"rgb(109, 236, 198)",
				"rgb(135, 92, 185)",
				"rgb(7, 77, 61)",
			},
			Legend:     Legend{Position: LegendRight, Show: true},
			YAxisLabel: countLabel,
			XAxisType:  AxisCategory,
			BindTo:     AnchorBenefits,
		},
		barDescriptor("How Easily Employees Can Take Leave for Mental Illness", BlockLeave, "rgb(105, 0, 100)", AnchorLeave),
		barDescriptor("Does Mental Illness Affect Your Productivity", BlockProductivity, "rgb(67, 127, 190)", AnchorProductivity),
		barDescriptor("Currently Have a Disorder", BlockDisorders, "rgb(133, 11, 62)", AnchorDisorders),
		barDescriptor("Observed or Experienced Negative Response to a Mental Issue", BlockResponse, "rgb(11, 133, 56)", AnchorResponse),
	}
}

func barDescriptor(title string, block int, col, anchor string) ChartDescriptor {
	return ChartDescriptor{
		Title:      title,
		Kind:       KindBar,
		Data:       BlockRef(block),
		Colors:     []string{col},
		Legend:     Legend{Position: LegendRight, Show: false},
		YAxisLabel: countLabel,
		XAxisType:  AxisCategory,
		BindTo:     anchor,
	}
}
