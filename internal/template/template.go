package template

import (
	"bytes"
	"fmt"
	"text/template"

	"catalog-report/internal/logging"
)

// Render evaluates a Go template string against data, with funcs available to
// the template. Missing map keys are an error (Option("missingkey=error")).
func Render(templateName, tmplStr string, data any, funcs template.FuncMap) (string, error) {
	if tmplStr == "" {
		return "", nil // Nothing to render
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Option("missingkey=error").Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template '%s': %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		logging.Logf(logging.Debug, "Template '%s' data type: %T", templateName, data)
		return "", fmt.Errorf("failed to execute template '%s': %w", templateName, err)
	}

	return buf.String(), nil
}

