package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats results for output.
type Formatter interface {
	FormatLogin(w io.Writer, username, token string) error
	FormatPut(w io.Writer, result *PutResult) error
	FormatGet(w io.Writer, result *GetResult) error
	FormatEtag(w io.Writer, result *EtagResult) error
	FormatDelete(w io.Writer, results []DeleteResult) error
	FormatUploadImage(w io.Writer, result *UploadImageResult) error
	FormatFetchImage(w io.Writer, result *FetchImageResult) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

func (f *HumanFormatter) FormatLogin(w io.Writer, username, _ string) error {
	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "Logged in as %s\n", username)
	}
	return nil
}

func (f *HumanFormatter) FormatPut(w io.Writer, result *PutResult) error {
	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "Stored: %s\n", result.Key)
		_, _ = fmt.Fprintf(w, "  Etag: %d\n", result.Etag)
	}
	return nil
}

// FormatGet prints the raw content. Quiet has no effect here; the content
// is the output.
func (f *HumanFormatter) FormatGet(w io.Writer, result *GetResult) error {
	_, _ = io.WriteString(w, result.Content)
	if !strings.HasSuffix(result.Content, "\n") && result.Content != "" {
		_, _ = io.WriteString(w, "\n")
	}
	return nil
}

func (f *HumanFormatter) FormatEtag(w io.Writer, result *EtagResult) error {
	if !result.Found {
		_, _ = fmt.Fprintf(w, "%s: not found\n", result.Key)
		return nil
	}
	_, _ = fmt.Fprintf(w, "%d\n", result.Etag)
	return nil
}

func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.Key, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Deleted: %s\n", r.Key)
		}
	}
	return nil
}

func (f *HumanFormatter) FormatUploadImage(w io.Writer, result *UploadImageResult) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, result.ObjectKey)
		return nil
	}
	_, _ = fmt.Fprintf(w, "Uploaded: %s -> %s\n", result.LocalPath, result.ObjectKey)
	_, _ = fmt.Fprintf(w, "  URL: %s\n", result.URL)
	return nil
}

func (f *HumanFormatter) FormatFetchImage(w io.Writer, result *FetchImageResult) error {
	if f.Quiet || result.LocalPath == "-" {
		return nil
	}
	_, _ = fmt.Fprintf(w, "Fetched: %s -> %s (%s, %s)\n",
		result.ObjectKey, result.LocalPath, result.ContentType, formatSize(result.Size))
	return nil
}

func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// FormatProfileList formats a list of profiles as an aligned table.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	nameWidth, endpointWidth, userWidth := len("NAME"), len("ENDPOINT"), len("USER")
	for i := range profiles {
		nameWidth = max(nameWidth, len(profiles[i].Name))
		endpointWidth = max(endpointWidth, len(profiles[i].Endpoint))
		userWidth = max(userWidth, len(profiles[i].Username))
	}
	nameWidth = min(nameWidth, 20)
	endpointWidth = min(endpointWidth, 50)
	userWidth = min(userWidth, 20)

	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %-*s  %s\n",
		nameWidth, "NAME", endpointWidth, "ENDPOINT", userWidth, "USER", "TOKEN")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s  %s\n",
		strings.Repeat("-", nameWidth), strings.Repeat("-", endpointWidth),
		strings.Repeat("-", userWidth), strings.Repeat("-", 15))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %-*s  %s\n", marker,
			nameWidth, truncate(p.Name, nameWidth),
			endpointWidth, truncate(p.Endpoint, endpointWidth),
			userWidth, truncate(p.Username, userWidth),
			maskSecret(p.Token, showSecrets))
	}

	return nil
}

func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:     %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprint(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Endpoint: %s\n", profile.Endpoint)
	username := profile.Username
	if username == "" {
		username = "(not logged in)"
	}
	_, _ = fmt.Fprintf(w, "User:     %s\n", username)
	_, _ = fmt.Fprintf(w, "Token:    %s\n", maskSecret(profile.Token, showSecrets))
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) FormatLogin(w io.Writer, username, token string) error {
	return writeJSON(w, struct {
		Username string `json:"username"`
		Token    string `json:"token"`
	}{Username: username, Token: token})
}

func (f *JSONFormatter) FormatPut(w io.Writer, result *PutResult) error {
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatGet(w io.Writer, result *GetResult) error {
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatEtag(w io.Writer, result *EtagResult) error {
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	type jsonResult struct {
		Key     string `json:"key"`
		Deleted bool   `json:"deleted"`
		Error   string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}

	for i, r := range results {
		jr := jsonResult{Key: r.Key, Deleted: r.Deleted}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

func (f *JSONFormatter) FormatUploadImage(w io.Writer, result *UploadImageResult) error {
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatFetchImage(w io.Writer, result *FetchImageResult) error {
	if result.LocalPath == "-" {
		return nil
	}
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return writeJSON(w, struct {
		Error string `json:"error"`
	}{Error: err.Error()})
}

type jsonProfile struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	Username string `json:"username,omitempty"`
	Token    string `json:"token,omitempty"`
	Default  bool   `json:"default"`
}

func newJSONProfile(p *Profile, isDefault, showSecrets bool) jsonProfile {
	jp := jsonProfile{
		Name:     p.Name,
		Endpoint: p.Endpoint,
		Username: p.Username,
		Default:  isDefault,
	}
	if p.Token != "" {
		jp.Token = maskSecret(p.Token, showSecrets)
	}
	return jp
}

func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		output.Profiles[i] = newJSONProfile(&profiles[i], profiles[i].Name == defaultName, showSecrets)
	}

	return writeJSON(w, output)
}

func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	return writeJSON(w, newJSONProfile(&profile, isDefault, showSecrets))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, width int) string {
	if len(s) <= width || width < 4 {
		return s
	}
	return s[:width-3] + "..."
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes < 0:
		return "unknown size"
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// maskSecret shows only the first and last 4 characters of a secret unless
// showSecrets is set.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
