package database

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    Config
		wantErr bool
	}{
		{
			name: "mysql defaults",
			env:  map[string]string{"DB_TYPE": "mysql", "DB_NAME": "app"},
			want: Config{Name: DefaultName, Type: "mysql", Host: "localhost", Port: "3306", Database: "app"},
		},
		{
			name: "postgres with synchronize",
			env:  map[string]string{"DB_TYPE": "postgres", "DB_NAME": "app", "DB_HOST": "db", "DB_SYNCHRONIZE": "true"},
			want: Config{Name: DefaultName, Type: "postgres", Host: "db", Port: "5432", Database: "app", Synchronize: true},
		},
		{
			name: "sqlite needs no host",
			env:  map[string]string{"DB_TYPE": "sqlite", "DB_NAME": ":memory:"},
			want: Config{Name: DefaultName, Type: "sqlite", Database: ":memory:"},
		},
		{
			name:    "missing type",
			env:     map[string]string{"DB_NAME": "app"},
			wantErr: true,
		},
		{
			name:    "missing name",
			env:     map[string]string{"DB_TYPE": "mysql"},
			wantErr: true,
		},
		{
			name:    "bad synchronize",
			env:     map[string]string{"DB_TYPE": "mysql", "DB_NAME": "app", "DB_SYNCHRONIZE": "maybe"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"DB_TYPE", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD", "DB_SYNCHRONIZE"} {
				t.Setenv(k, tt.env[k])
			}

			got, err := LoadConfigFromEnv()
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadConfigFromEnv() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("LoadConfigFromEnv() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewDatabase(t *testing.T) {
	tests := []struct {
		dbType  string
		wantErr bool
	}{
		{"mysql", false},
		{"PostgreSQL", false},
		{"sqlite", false},
		{"oracle", true},
	}
	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			db, err := NewDatabase(Config{Type: tt.dbType})
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewDatabase(%q) error = %v, wantErr %v", tt.dbType, err, tt.wantErr)
			}
			if !tt.wantErr && db == nil {
				t.Errorf("NewDatabase(%q) returned nil database", tt.dbType)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ormkit.conf")
	conf := "Databases:\n" +
		"\t-\n" +
		"\t\tName: main\n" +
		"\t\tType: sqlite\n" +
		"\t\tDatabase: main.db\n" +
		"\t\tSynchronize: true\n" +
		"\t-\n" +
		"\t\tName: reports\n" +
		"\t\tType: postgres\n" +
		"\t\tDatabase: reports\n"
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		t.Fatal(err)
	}

	configs, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("LoadConfigFile() returned %d configs, want 2", len(configs))
	}
	if configs[0].Name != "main" || !configs[0].Synchronize {
		t.Errorf("configs[0] = %+v", configs[0])
	}
	if configs[1].Port != "5432" || configs[1].Host != "localhost" {
		t.Errorf("configs[1] = %+v, want postgres defaults", configs[1])
	}
}

func TestLoadConfigFileDuplicateName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ormkit.conf")
	conf := "Databases:\n" +
		"\t-\n" +
		"\t\tType: sqlite\n" +
		"\t\tDatabase: a.db\n" +
		"\t-\n" +
		"\t\tType: sqlite\n" +
		"\t\tDatabase: b.db\n"
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfigFile(path); err == nil {
		t.Fatal("LoadConfigFile() with two unnamed databases succeeded, want duplicate name error")
	}
}

func TestDescribeConfigFile(t *testing.T) {
	var buf bytes.Buffer
	if err := DescribeConfigFile(&buf); err != nil {
		t.Fatalf("DescribeConfigFile() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Databases:") {
		t.Errorf("DescribeConfigFile() output lacks Databases:\n%s", buf.String())
	}
}
