package config

// SystemDefaults returns the built-in configuration: the threading, naming
// and abstract-class inspections on, the rest available but off.
func SystemDefaults() *Config {
	on, off := true, false
	return &Config{
		Inspections: map[string]InspectionConfig{
			"field-accessed-synchronized-and-unsynchronized": {Enabled: &on, Severity: "warning"},
			"instance-method-naming-convention": {
				Enabled:  &on,
				Severity: "warning",
				Options: map[string]interface{}{
					"pattern":    "[a-z][A-Za-z]*",
					"min_length": 4,
					"max_length": 32,
				},
			},
			"abstract-class-without-abstract-methods": {Enabled: &on, Severity: "warning"},
			"empty-class":       {Enabled: &off, Severity: "note"},
			"foreach-statement": {Enabled: &off, Severity: "note"},
			"questionable-name": {
				Enabled:  &off,
				Severity: "warning",
				Options:  map[string]interface{}{"names": []interface{}{"foo", "bar", "baz"}},
			},
			"parameter-count": {Enabled: &off, Severity: "warning", Options: map[string]interface{}{"max_params": 5}},
			"method-length":   {Enabled: &off, Severity: "warning", Options: map[string]interface{}{"max_lines": 50}},
			"nesting-depth":   {Enabled: &off, Severity: "warning", Options: map[string]interface{}{"max_depth": 4}},
			"empty-catch-block": {
				Enabled:  &off,
				Severity: "warning",
				Options:  map[string]interface{}{"ignore_names": []interface{}{"ignored", "expected"}},
			},
		},
		Telemetry: TelemetryConfig{
			Protocol:       "grpc",
			Endpoint:       "localhost:4317",
			Insecure:       true,
			SampleRate:     1.0,
			ServiceName:    "jinspect",
			ServiceVersion: "dev",
		},
	}
}
