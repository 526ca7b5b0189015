package config

// SampleConfig returns a fully commented configuration file
func SampleConfig() string {
	return `# LeafScan configuration
version: "1.0"

# Remote diagnosis service
service:
  # Base address; /api/crop-diagnosis and /api/generate-report are appended
  base_url: "http://127.0.0.1:5000"
  # Per-request timeout (0 uses the 60s default)
  timeout: 60s
  user_agent: "leafscan"

# Report export
report:
  # Directory where crop_report.pdf is saved
  output_dir: "."
  # Replace an existing crop_report.pdf instead of saving "crop_report (n).pdf"
  overwrite: false

# Headless output
output:
  # text | json | markdown
  default_format: "text"
  # auto | always | never
  color_mode: "auto"
  timestamp_format: "2006-01-02 15:04:05"

# Interactive UI
ui:
  # default | high-contrast | minimal
  theme: "default"

# Structured logging
log:
  # debug | info | warn | error
  level: "info"
  # Empty logs to stderr; the TUI defaults to leafscan.log
  file: ""

# leafscan watch
watch:
  extensions: [".jpg", ".jpeg", ".png", ".gif"]
  # Wait this long after the last write before reading a new image
  settle: 500ms

# Diagnoses of identical image bytes are reused from memory when size > 0
cache:
  size: 0
`
}

// MinimalSampleConfig returns a compact configuration with the essential settings
func MinimalSampleConfig() string {
	return `version: "1.0"
service:
  base_url: "http://127.0.0.1:5000"
report:
  output_dir: "."
`
}
