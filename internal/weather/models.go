package weather

// Kind is the type category of a stored column.
type Kind string

const (
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindString Kind = "string"
)

// Column describes one column of the observation table.
type Column struct {
	Name    string
	Kind    Kind
	SQLType string
}

// Columns is the declared column order. Schema creation, positional inserts,
// row scanning and literal rendering all follow it.
var Columns = []Column{
	{Name: "id", Kind: KindInt, SQLType: "INTEGER"},
	{Name: "applicable_date", Kind: KindString, SQLType: "TEXT"},
	{Name: "weather_state_name", Kind: KindString, SQLType: "TEXT"},
	{Name: "weather_state_abbr", Kind: KindString, SQLType: "TEXT"},
	{Name: "wind_speed", Kind: KindFloat, SQLType: "REAL"},
	{Name: "wind_direction", Kind: KindFloat, SQLType: "REAL"},
	{Name: "wind_direction_compass", Kind: KindString, SQLType: "TEXT"},
	{Name: "min_temp", Kind: KindInt, SQLType: "INTEGER"},
	{Name: "max_temp", Kind: KindInt, SQLType: "INTEGER"},
	{Name: "the_temp", Kind: KindInt, SQLType: "INTEGER"},
	{Name: "air_pressure", Kind: KindFloat, SQLType: "REAL"},
	{Name: "humidity", Kind: KindFloat, SQLType: "REAL"},
	{Name: "visibility", Kind: KindFloat, SQLType: "REAL"},
	{Name: "predictability", Kind: KindInt, SQLType: "INTEGER"},
	{Name: "created", Kind: KindString, SQLType: "TEXT"},
}

const (
	// TableName is the observation table.
	TableName = "weather_info"
	// IndexedColumn is the column carrying the secondary index.
	IndexedColumn = "applicable_date"
)

// Observation is one daily weather record as reported by the provider.
// A nil field means the provider sent null.
//
// Temperatures are declared as int columns, but the provider reports
// fractional degrees, so they are carried as float64.
type Observation struct {
	ID                   *int64   `json:"id"`
	ApplicableDate       *string  `json:"applicable_date"`
	WeatherStateName     *string  `json:"weather_state_name"`
	WeatherStateAbbr     *string  `json:"weather_state_abbr"`
	WindSpeed            *float64 `json:"wind_speed"`
	WindDirection        *float64 `json:"wind_direction"`
	WindDirectionCompass *string  `json:"wind_direction_compass"`
	MinTemp              *float64 `json:"min_temp"`
	MaxTemp              *float64 `json:"max_temp"`
	TheTemp              *float64 `json:"the_temp"`
	AirPressure          *float64 `json:"air_pressure"`
	Humidity             *float64 `json:"humidity"`
	Visibility           *float64 `json:"visibility"`
	Predictability       *int64   `json:"predictability"`
	Created              *string  `json:"created"`
}

// Values returns the field values in Columns order, with nil for null fields.
func (o Observation) Values() []any {
	return []any{
		deref(o.ID),
		deref(o.ApplicableDate),
		deref(o.WeatherStateName),
		deref(o.WeatherStateAbbr),
		deref(o.WindSpeed),
		deref(o.WindDirection),
		deref(o.WindDirectionCompass),
		deref(o.MinTemp),
		deref(o.MaxTemp),
		deref(o.TheTemp),
		deref(o.AirPressure),
		deref(o.Humidity),
		deref(o.Visibility),
		deref(o.Predictability),
		deref(o.Created),
	}
}

// Targets returns pointers to the fields in Columns order, suitable for
// filling an Observation from a scanned row.
func (o *Observation) Targets() []any {
	return []any{
		&o.ID,
		&o.ApplicableDate,
		&o.WeatherStateName,
		&o.WeatherStateAbbr,
		&o.WindSpeed,
		&o.WindDirection,
		&o.WindDirectionCompass,
		&o.MinTemp,
		&o.MaxTemp,
		&o.TheTemp,
		&o.AirPressure,
		&o.Humidity,
		&o.Visibility,
		&o.Predictability,
		&o.Created,
	}
}

// DaySummary aggregates the stored observations for one applicable date.
type DaySummary struct {
	Date         string  `json:"date"`
	Observations int     `json:"observations"`
	WeatherState string  `json:"weatherState"`
	MinTemp      float64 `json:"minTemp"`
	MaxTemp      float64 `json:"maxTemp"`
	AvgTemp      float64 `json:"avgTemp"`
	WindSpeed    float64 `json:"windSpeed"`
	AirPressure  float64 `json:"airPressure"`
	Humidity     float64 `json:"humidity"`
	Visibility   float64 `json:"visibility"`
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
