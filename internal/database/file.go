package database

import (
	"fmt"
	"io"

	"github.com/mjl-/sconf"
)

// File is the sconf configuration file listing the databases to connect to.
type File struct {
	Databases []Config `sconf-doc:"Databases to connect to. With more than one, every record type must name its database."`
}

// LoadConfigFile parses an sconf file and returns its normalized database configs.
func LoadConfigFile(path string) ([]Config, error) {
	var f File
	if err := sconf.ParseFile(path, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if len(f.Databases) == 0 {
		return nil, fmt.Errorf("config file %s lists no databases", path)
	}

	seen := map[string]bool{}
	configs := make([]Config, 0, len(f.Databases))
	for _, c := range f.Databases {
		c, err := c.Normalize()
		if err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("config file %s: duplicate database name %s", path, c.Name)
		}
		seen[c.Name] = true
		configs = append(configs, c)
	}
	return configs, nil
}

// DescribeConfigFile writes an annotated example configuration file.
func DescribeConfigFile(w io.Writer) error {
	example := File{
		Databases: []Config{
			{Name: DefaultName, Type: "sqlite", Database: "app.db", Synchronize: true},
		},
	}
	return sconf.Describe(w, &example)
}
