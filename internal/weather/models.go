package weather

// Column names as the preprocessing artifact expects them.
const (
	ColumnWindSpeed     = "Wind Speed"
	ColumnTemperature   = "Temperature"
	ColumnUVIndex       = "UV Index"
	ColumnPrecipitation = "Precipitation (%)"
	ColumnPressure      = "Atmospheric Pressure"
	ColumnVisibility    = "Visibility (km)"
	ColumnHumidity      = "Humidity"
	ColumnLocation      = "Location"
	ColumnSeason        = "Season"
	ColumnCloudCover    = "Cloud Cover"
)

// Location is the kind of area the readings were taken in.
type Location string

const (
	LocationUrban    Location = "Urban"
	LocationSuburban Location = "Suburban"
	LocationRural    Location = "Rural"
)

// Season of the year.
type Season string

const (
	SeasonSummer Season = "Summer"
	SeasonWinter Season = "Winter"
	SeasonSpring Season = "Spring"
	SeasonAutumn Season = "Autumn"
)

// CloudCover is the sky condition.
type CloudCover string

const (
	CloudCoverClear        CloudCover = "Clear"
	CloudCoverPartlyCloudy CloudCover = "Partly Cloudy"
	CloudCoverOvercast     CloudCover = "Overcast"
)

// Locations, Seasons and CloudCovers list the declared domains in form order.
var (
	Locations   = []Location{LocationUrban, LocationSuburban, LocationRural}
	Seasons     = []Season{SeasonSummer, SeasonWinter, SeasonSpring, SeasonAutumn}
	CloudCovers = []CloudCover{CloudCoverClear, CloudCoverPartlyCloudy, CloudCoverOvercast}
)

// Observation is one set of sensor readings plus context, i.e. a single row
// for the classification pipeline. Categorical values are kept as typed
// strings so values outside the declared domains still reach the
// preprocessor and are rejected there.
type Observation struct {
	WindSpeed     float64    `json:"wind_speed"`
	Temperature   float64    `json:"temperature"`
	UVIndex       float64    `json:"uv_index"`
	Precipitation float64    `json:"precipitation_pct"`
	Pressure      float64    `json:"pressure"`
	Visibility    float64    `json:"visibility"`
	Humidity      float64    `json:"humidity"`
	Location      Location   `json:"location"`
	Season        Season     `json:"season"`
	CloudCover    CloudCover `json:"cloud_cover"`
}

// DefaultObservation returns the values the input form starts with.
func DefaultObservation() Observation {
	return Observation{
		WindSpeed:     10.0,
		Temperature:   25.0,
		UVIndex:       5.0,
		Precipitation: 20.0,
		Pressure:      1013.0,
		Visibility:    10.0,
		Humidity:      60.0,
		Location:      LocationUrban,
		Season:        SeasonSummer,
		CloudCover:    CloudCoverClear,
	}
}

// Column is a named cell of a structured record. Value holds either a
// float64 or a string.
type Column struct {
	Name  string
	Value any
}

// Record is an ordered single-row structured record.
type Record []Column

// Lookup returns the value stored under name.
func (r Record) Lookup(name string) (any, bool) {
	for _, c := range r {
		if c.Name == name {
			return c.Value, true
		}
	}
	return nil, false
}

// Names returns the column names in order.
func (r Record) Names() []string {
	names := make([]string, len(r))
	for i, c := range r {
		names[i] = c.Name
	}
	return names
}

// Record renders the observation with the ten column names, in field
// contract order.
func (o Observation) Record() Record {
	return Record{
		{Name: ColumnWindSpeed, Value: o.WindSpeed},
		{Name: ColumnTemperature, Value: o.Temperature},
		{Name: ColumnUVIndex, Value: o.UVIndex},
		{Name: ColumnPrecipitation, Value: o.Precipitation},
		{Name: ColumnPressure, Value: o.Pressure},
		{Name: ColumnVisibility, Value: o.Visibility},
		{Name: ColumnHumidity, Value: o.Humidity},
		{Name: ColumnLocation, Value: string(o.Location)},
		{Name: ColumnSeason, Value: string(o.Season)},
		{Name: ColumnCloudCover, Value: string(o.CloudCover)},
	}
}

// Prediction is the decoded weather type for one observation.
type Prediction struct {
	Label string `json:"label"`
}
