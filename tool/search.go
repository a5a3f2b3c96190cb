package tool

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"agentgate"
)

// SearchToolOption configures the search tool.
type SearchToolOption func(*searchToolConfig)

type searchToolConfig struct {
	basePath   string
	maxResults int
}

// WithSearchPath sets the base path for searches.
func WithSearchPath(path string) SearchToolOption {
	return func(c *searchToolConfig) {
		c.basePath = path
	}
}

// WithMaxResults limits the number of search results.
// Default is 100.
func WithMaxResults(n int) SearchToolOption {
	return func(c *searchToolConfig) {
		c.maxResults = n
	}
}

func applySearchOpts(opts []SearchToolOption) *searchToolConfig {
	cfg := &searchToolConfig{
		maxResults: 100,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// searchFilesArgs defines arguments for the search tool.
type searchFilesArgs struct {
	Pattern string `json:"pattern"`
	Glob    string `json:"glob,omitempty"`
}

var searchFilesSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"pattern": {"type": "string", "description": "Regular expression to search for"},
		"glob": {"type": "string", "description": "Optional filename glob to filter searched files"}
	},
	"required": ["pattern"]
}`)

// NewSearchFilesTool creates a tool that searches file contents by regular
// expression under the configured base path.
func NewSearchFilesTool(opts ...SearchToolOption) (agentgate.Tool, Handler) {
	cfg := applySearchOpts(opts)

	t := agentgate.Tool{
		Name:        "search_files",
		Description: "Search file contents for a regular expression",
		Parameters:  searchFilesSchema,
	}

	handler := func(ctx context.Context, call agentgate.ToolCall) (string, error) {
		var args searchFilesArgs
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", err
		}
		if args.Pattern == "" {
			return "", fmt.Errorf("pattern is required")
		}

		re, err := regexp.Compile(args.Pattern)
		if err != nil {
			return "", fmt.Errorf("invalid pattern: %w", err)
		}

		root := cfg.basePath
		if root == "" {
			root = "."
		}

		var b strings.Builder
		count := 0
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || count >= cfg.maxResults {
				return fs.SkipAll
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && path != root {
					return fs.SkipDir
				}
				return nil
			}
			if args.Glob != "" {
				if ok, _ := filepath.Match(args.Glob, d.Name()); !ok {
					return nil
				}
			}
			matches, err := searchFile(path, re, cfg.maxResults-count)
			if err != nil {
				return nil // unreadable files are skipped, not fatal
			}
			for _, m := range matches {
				rel, relErr := filepath.Rel(root, path)
				if relErr != nil {
					rel = path
				}
				fmt.Fprintf(&b, "%s:%d: %s\n", rel, m.line, m.text)
				count++
			}
			return nil
		})
		if err != nil {
			return "", err
		}
		if count == 0 {
			return "no matches", nil
		}
		return b.String(), nil
	}

	return t, handler
}

type searchMatch struct {
	line int
	text string
}

func searchFile(path string, re *regexp.Regexp, limit int) ([]searchMatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var matches []searchMatch
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if re.MatchString(line) {
			matches = append(matches, searchMatch{line: lineNum, text: line})
			if len(matches) >= limit {
				break
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}
