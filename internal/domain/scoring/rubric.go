package scoring

const (
	RubricaExcelente          = "Excelente"
	RubricaAceptable          = "Aceptable"
	RubricaNecesitaMejorar    = "Necesita mejorar"
	RubricaBajoDesempeno      = "Bajo desempeño"
	RubricaMedidasCorrectivas = "Medidas correctivas"

	RubricaBueno           = "Bueno"
	RubricaRegular         = "Regular"
	RubricaBajoRendimiento = "Bajo rendimiento"
)

// Band is a half-open interval [Min, next band's Min) labelled with a rubric.
type Band struct {
	Min   float64 `json:"min"`
	Label string  `json:"label"`
}

// Bands are ordered from the highest minimum down; the last entry catches
// everything below the previous minimum.
var (
	monthlyBands = []Band{
		{Min: 91, Label: RubricaExcelente},
		{Min: 81, Label: RubricaAceptable},
		{Min: 70, Label: RubricaNecesitaMejorar},
		{Min: 50, Label: RubricaBajoDesempeno},
	}
	monthlyFloor = RubricaMedidasCorrectivas

	accumulatedBands = []Band{
		{Min: 90, Label: RubricaExcelente},
		{Min: 75, Label: RubricaBueno},
		{Min: 50, Label: RubricaRegular},
	}
	accumulatedFloor = RubricaBajoRendimiento
)

func ClassifyMonthly(totalScore float64) string {
	return classify(monthlyBands, monthlyFloor, totalScore)
}

func ClassifyAccumulated(percentage float64) string {
	return classify(accumulatedBands, accumulatedFloor, percentage)
}

func MonthlyLabels() []string {
	return labels(monthlyBands, monthlyFloor)
}

func AccumulatedLabels() []string {
	return labels(accumulatedBands, accumulatedFloor)
}

func classify(bands []Band, floor string, value float64) string {
	for _, band := range bands {
		if value >= band.Min {
			return band.Label
		}
	}
	return floor
}

func labels(bands []Band, floor string) []string {
	out := make([]string, 0, len(bands)+1)
	for _, band := range bands {
		out = append(out, band.Label)
	}
	return append(out, floor)
}
