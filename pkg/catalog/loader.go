package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// metricsFile and productsFile are the expected file names inside a catalog
// directory.
const (
	metricsFile  = "metrics.yaml"
	productsFile = "data_products.yaml"
)

type metricsDoc struct {
	Metrics []*Metric `yaml:"metrics"`
}

type productsDoc struct {
	DataProducts []*DataProduct `yaml:"data_products"`
}

// Load reads a catalog from a directory containing metrics.yaml and
// data_products.yaml. The returned catalog is validated: every metric must
// reference a declared data product, and declared dimensions must exist as
// columns of that product.
func Load(dir string) (*Catalog, error) {
	metrics, err := loadMetrics(filepath.Join(dir, metricsFile))
	if err != nil {
		return nil, err
	}

	products, err := loadDataProducts(filepath.Join(dir, productsFile))
	if err != nil {
		return nil, err
	}

	c := New(metrics, products)
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func loadMetrics(path string) ([]*Metric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics catalog %q: %w", path, err)
	}

	var doc metricsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse metrics catalog %q: %w", path, err)
	}
	return doc.Metrics, nil
}

func loadDataProducts(path string) ([]*DataProduct, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data product catalog %q: %w", path, err)
	}

	var doc productsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse data product catalog %q: %w", path, err)
	}
	return doc.DataProducts, nil
}

// validate checks cross-references between metrics and data products.
func (c *Catalog) validate() error {
	var problems []string

	for _, m := range c.metrics {
		if m.MetricID == "" {
			problems = append(problems, "metric with empty metric_id")
			continue
		}
		if m.DataProduct == "" {
			problems = append(problems, fmt.Sprintf("metric %s: missing data_product", m.MetricID))
			continue
		}
		dp := c.productByID[m.DataProduct]
		if dp == nil {
			problems = append(problems, fmt.Sprintf("metric %s: unknown data_product %q", m.MetricID, m.DataProduct))
			continue
		}
		for _, dim := range m.AllowedDimensions {
			if !hasColumn(dp, dim) {
				problems = append(problems, fmt.Sprintf("metric %s: dimension %q is not a column of %s", m.MetricID, dim, dp.ID))
			}
		}
	}

	for _, dp := range c.dataProducts {
		if dp.ID == "" {
			problems = append(problems, "data product with empty id")
			continue
		}
		if !strings.HasPrefix(dp.ID, "dp_") {
			problems = append(problems, fmt.Sprintf("data product %s: id must carry the dp_ prefix", dp.ID))
		}
		if len(dp.Columns) == 0 {
			problems = append(problems, fmt.Sprintf("data product %s: no columns declared", dp.ID))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("catalog validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

func hasColumn(dp *DataProduct, name string) bool {
	for _, c := range dp.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}
