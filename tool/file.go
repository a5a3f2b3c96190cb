package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"agentgate"
)

// FileToolOption configures file tools.
type FileToolOption func(*fileToolConfig)

type fileToolConfig struct {
	basePath    string
	maxFileSize int64
}

// WithBasePath restricts file operations to a specific directory.
// All paths are resolved relative to this base path.
func WithBasePath(path string) FileToolOption {
	return func(c *fileToolConfig) {
		c.basePath = path
	}
}

// WithMaxFileSize sets the maximum file size for read operations.
// Default is 10MB.
func WithMaxFileSize(bytes int64) FileToolOption {
	return func(c *fileToolConfig) {
		c.maxFileSize = bytes
	}
}

func applyFileOpts(opts []FileToolOption) *fileToolConfig {
	cfg := &fileToolConfig{
		maxFileSize: 10 * 1024 * 1024, // 10MB default
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *fileToolConfig) resolvePath(path string) (string, error) {
	path = filepath.Clean(path)

	if c.basePath != "" {
		basePath := filepath.Clean(c.basePath)
		fullPath := filepath.Join(basePath, path)

		// Ensure the resolved path is still within the base path
		rel, err := filepath.Rel(basePath, fullPath)
		if err != nil || strings.HasPrefix(rel, "..") {
			return "", fmt.Errorf("path %q is outside base path %q", path, basePath)
		}
		path = fullPath
	}
	return path, nil
}

// readFileArgs defines arguments for the read file tool.
type readFileArgs struct {
	Path string `json:"path"`
}

var readFileSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"path": {"type": "string", "description": "Path to the file to read"}
	},
	"required": ["path"]
}`)

// NewReadFileTool creates a tool for reading file contents.
func NewReadFileTool(opts ...FileToolOption) (agentgate.Tool, Handler) {
	cfg := applyFileOpts(opts)

	t := agentgate.Tool{
		Name:        "read_file",
		Description: "Read the contents of a file",
		Parameters:  readFileSchema,
	}

	handler := func(ctx context.Context, call agentgate.ToolCall) (string, error) {
		var args readFileArgs
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", err
		}
		if args.Path == "" {
			return "", fmt.Errorf("path is required")
		}

		path, err := cfg.resolvePath(args.Path)
		if err != nil {
			return "", err
		}

		info, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		if info.Size() > cfg.maxFileSize {
			return "", fmt.Errorf("file size %d exceeds maximum %d", info.Size(), cfg.maxFileSize)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	return t, handler
}

// listDirArgs defines arguments for the list directory tool.
type listDirArgs struct {
	Path string `json:"path"`
}

var listDirSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"path": {"type": "string", "description": "Directory to list, relative to the workspace root"}
	}
}`)

// NewListDirTool creates a tool for listing directory entries.
func NewListDirTool(opts ...FileToolOption) (agentgate.Tool, Handler) {
	cfg := applyFileOpts(opts)

	t := agentgate.Tool{
		Name:        "list_dir",
		Description: "List the entries of a directory",
		Parameters:  listDirSchema,
	}

	handler := func(ctx context.Context, call agentgate.ToolCall) (string, error) {
		var args listDirArgs
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", err
		}
		if args.Path == "" {
			args.Path = "."
		}

		path, err := cfg.resolvePath(args.Path)
		if err != nil {
			return "", err
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return "", err
		}

		var b strings.Builder
		for _, entry := range entries {
			if entry.IsDir() {
				b.WriteString(entry.Name() + "/\n")
			} else {
				b.WriteString(entry.Name() + "\n")
			}
		}
		return b.String(), nil
	}

	return t, handler
}
