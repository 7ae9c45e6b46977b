package weather

// FieldKind distinguishes numeric readings from categorical context values.
type FieldKind string

const (
	FieldNumeric     FieldKind = "float"
	FieldCategorical FieldKind = "enum"
)

// FieldSpec describes one input of the form: its column name, the key used
// in forms and JSON bodies, its domain and its default.
type FieldSpec struct {
	Column      string    `json:"name"`
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Kind        FieldKind `json:"type"`
	Min         *float64  `json:"min,omitempty"`
	Max         *float64  `json:"max,omitempty"`
	Step        float64   `json:"step,omitempty"`
	Options     []string  `json:"options,omitempty"`
	Default     any       `json:"default"`
	Description string    `json:"description"`
}

// Fields is the field contract, in form and column order.
var Fields = []FieldSpec{
	{
		Column: ColumnWindSpeed, Key: "wind_speed", Label: "Wind Speed (km/h)",
		Kind: FieldNumeric, Min: bound(0), Max: bound(100), Step: 0.1, Default: 10.0,
		Description: "Speed of wind at surface level",
	},
	{
		Column: ColumnTemperature, Key: "temperature", Label: "Temperature (°C)",
		Kind: FieldNumeric, Min: bound(-30), Max: bound(50), Step: 0.1, Default: 25.0,
		Description: "Current ambient temperature",
	},
	{
		Column: ColumnUVIndex, Key: "uv_index", Label: "UV Index",
		Kind: FieldNumeric, Min: bound(0), Max: bound(15), Step: 0.1, Default: 5.0,
		Description: "Intensity of ultraviolet radiation",
	},
	{
		Column: ColumnPrecipitation, Key: "precipitation_pct", Label: "Precipitation (%)",
		Kind: FieldNumeric, Min: bound(0), Max: bound(100), Step: 0.1, Default: 20.0,
		Description: "Likelihood of rainfall or snow",
	},
	{
		Column: ColumnPressure, Key: "pressure", Label: "Atmospheric Pressure (hPa)",
		Kind: FieldNumeric, Min: bound(900), Max: bound(1100), Step: 0.1, Default: 1013.0,
		Description: "Pressure exerted by the atmosphere",
	},
	{
		Column: ColumnVisibility, Key: "visibility", Label: "Visibility (km)",
		Kind: FieldNumeric, Min: bound(0), Max: bound(50), Step: 0.1, Default: 10.0,
		Description: "Distance at which objects can be clearly seen",
	},
	{
		Column: ColumnHumidity, Key: "humidity", Label: "Humidity (%)",
		Kind: FieldNumeric, Min: bound(0), Max: bound(100), Step: 0.1, Default: 60.0,
		Description: "Moisture content in the air",
	},
	{
		Column: ColumnLocation, Key: "location", Label: "Location",
		Kind: FieldCategorical, Options: stringsOf(Locations), Default: string(LocationUrban),
		Description: "Type of area (Urban/Suburban/Rural)",
	},
	{
		Column: ColumnSeason, Key: "season", Label: "Season",
		Kind: FieldCategorical, Options: stringsOf(Seasons), Default: string(SeasonSummer),
		Description: "Current season of the year",
	},
	{
		Column: ColumnCloudCover, Key: "cloud_cover", Label: "Cloud Cover",
		Kind: FieldCategorical, Options: stringsOf(CloudCovers), Default: string(CloudCoverClear),
		Description: "Sky condition based on clouds",
	},
}

// Columns returns the ten input column names in contract order.
func Columns() []string {
	cols := make([]string, len(Fields))
	for i, f := range Fields {
		cols[i] = f.Column
	}
	return cols
}

// bound keeps a zero minimum distinguishable from an unset one.
func bound(v float64) *float64 {
	return &v
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
