package catalog

// Sensitivity classifies a column by the access tier required to read it.
type Sensitivity string

const (
	// SensitivityLow marks columns readable by every known role.
	SensitivityLow Sensitivity = "LOW"

	// SensitivityMed marks columns requiring elevated access.
	SensitivityMed Sensitivity = "MED"

	// SensitivityHigh marks columns restricted to compliance and audit roles.
	SensitivityHigh Sensitivity = "HIGH"
)

// sensitivityRank orders tiers for comparison. Unknown tiers rank highest so
// that a malformed catalog entry fails closed.
var sensitivityRank = map[Sensitivity]int{
	SensitivityLow:  1,
	SensitivityMed:  2,
	SensitivityHigh: 3,
}

// Rank returns the ordinal position of the tier (LOW < MED < HIGH).
// Unknown values rank above HIGH.
func (s Sensitivity) Rank() int {
	if r, ok := sensitivityRank[s]; ok {
		return r
	}
	return sensitivityRank[SensitivityHigh] + 1
}

// AtMost reports whether s is at or below the given ceiling tier.
func (s Sensitivity) AtMost(ceiling Sensitivity) bool {
	return s.Rank() <= ceiling.Rank()
}

// ColumnRef names a column together with its sensitivity tier. Sensitivity is
// a property of the owning data product's schema, resolved once per plan.
type ColumnRef struct {
	Name        string      `yaml:"name" json:"name"`
	Sensitivity Sensitivity `yaml:"sensitivity" json:"sensitivity"`
}

// Metric is a catalog entry describing one computable metric.
type Metric struct {
	// MetricID is the stable identifier (e.g. "complaint_count").
	MetricID string `yaml:"metric_id" json:"metric_id"`

	// Name is the human-readable metric name.
	Name string `yaml:"name" json:"name"`

	// Version is the semantic version of the metric definition.
	Version string `yaml:"version" json:"version"`

	// Description is free text used by relevance search.
	Description string `yaml:"description" json:"description"`

	// DataProduct is the id of the data product this metric reads.
	DataProduct string `yaml:"data_product" json:"data_product"`

	// AllowedDimensions lists the dimensions the metric may be grouped by.
	AllowedDimensions []string `yaml:"allowed_dimensions" json:"allowed_dimensions"`

	// AllowedFilters lists the filter keys the metric accepts.
	AllowedFilters []string `yaml:"allowed_filters" json:"allowed_filters"`
}

// HasDimension reports whether dim is an allowed dimension of the metric.
func (m *Metric) HasDimension(dim string) bool {
	for _, d := range m.AllowedDimensions {
		if d == dim {
			return true
		}
	}
	return false
}

// HasFilter reports whether key is an allowed filter of the metric.
func (m *Metric) HasFilter(key string) bool {
	for _, f := range m.AllowedFilters {
		if f == key {
			return true
		}
	}
	return false
}

// DataProduct is a named, versioned, queryable table with a declared schema
// whose columns carry sensitivity tiers.
type DataProduct struct {
	// ID is the physical table name (dp_ prefixed).
	ID string `yaml:"id" json:"id"`

	// Name is the human-readable product name.
	Name string `yaml:"name" json:"name"`

	// Version is the semantic version of the product schema.
	Version string `yaml:"version" json:"version"`

	// Description is free text used by relevance search.
	Description string `yaml:"description" json:"description"`

	// Columns is the declared schema with per-column sensitivity.
	Columns []ColumnRef `yaml:"columns" json:"columns"`

	// RegionColumn is the column carrying the product's region attribute
	// (e.g. "region" for complaints, "bank_region" for call reports).
	// Empty if the product has no region attribute.
	RegionColumn string `yaml:"region_column" json:"region_column"`

	// DateColumn is the event-date column used for date-range and year
	// predicates. Empty if the product is keyed by period instead.
	DateColumn string `yaml:"date_column" json:"date_column"`

	// GrainColumns maps a time grain ("month", "quarter") to the column
	// that realizes it, for purpose-forced aggregation.
	GrainColumns map[string]string `yaml:"grain_columns" json:"grain_columns"`
}

// ColumnSensitivity returns the sensitivity tier of a named column. Unknown
// columns default to HIGH so that requests for undeclared columns fail closed.
func (dp *DataProduct) ColumnSensitivity(name string) Sensitivity {
	for _, c := range dp.Columns {
		if c.Name == name {
			return c.Sensitivity
		}
	}
	return SensitivityHigh
}

// GrainColumn returns the column realizing the given time grain, if the
// product supports it.
func (dp *DataProduct) GrainColumn(grain string) (string, bool) {
	col, ok := dp.GrainColumns[grain]
	return col, ok
}

// Catalog is an immutable snapshot of the metric and data-product catalog.
type Catalog struct {
	metrics      []*Metric
	dataProducts []*DataProduct
	metricByID   map[string]*Metric
	productByID  map[string]*DataProduct
}

// New builds a catalog snapshot from metric and data-product definitions.
func New(metrics []*Metric, products []*DataProduct) *Catalog {
	c := &Catalog{
		metrics:      metrics,
		dataProducts: products,
		metricByID:   make(map[string]*Metric, len(metrics)),
		productByID:  make(map[string]*DataProduct, len(products)),
	}
	for _, m := range metrics {
		c.metricByID[m.MetricID] = m
	}
	for _, dp := range products {
		c.productByID[dp.ID] = dp
	}
	return c
}

// Metrics returns all metrics in the catalog.
func (c *Catalog) Metrics() []*Metric {
	return c.metrics
}

// DataProducts returns all data products in the catalog.
func (c *Catalog) DataProducts() []*DataProduct {
	return c.dataProducts
}

// Metric returns the metric with the given id, or nil.
func (c *Catalog) Metric(id string) *Metric {
	return c.metricByID[id]
}

// DataProduct returns the data product with the given id, or nil.
func (c *Catalog) DataProduct(id string) *DataProduct {
	return c.productByID[id]
}
