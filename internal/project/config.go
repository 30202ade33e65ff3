// Package project 实现 Lumen 工程配置相关功能
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// 常量定义
const (
	ConfigFileName = "lumen.toml" // 配置文件名

	// EmitIR 文本 IR 输出
	EmitIR = "ir"
	// EmitJSON JSON IR 输出
	EmitJSON = "json"
)

// Config 工程配置
type Config struct {
	Package PackageInfo `toml:"package"`
	Build   BuildInfo   `toml:"build"`
}

// PackageInfo 包信息
type PackageInfo struct {
	// Name 包名（建议使用有意义的名称）
	Name string `toml:"name"`

	// Version 版本号（遵循语义化版本，如 1.0.0）
	Version string `toml:"version"`
}

// BuildInfo 构建选项
type BuildInfo struct {
	// Emit 输出格式：ir 或 json
	Emit string `toml:"emit"`

	// Jobs 并行编译的工作协程数，0 表示使用 CPU 核数
	Jobs int `toml:"jobs"`
}

// LoadConfig 从文件加载配置
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Default 生成默认配置
// dir 是项目目录路径，用于生成默认的项目名
func Default(dir string) *Config {
	baseName := filepath.Base(dir)
	if baseName == "" || baseName == "." || baseName == "/" {
		baseName = "my-app"
	}

	c := &Config{
		Package: PackageInfo{
			Name:    sanitizeName(baseName),
			Version: "0.1.0",
		},
	}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Build.Emit == "" {
		c.Build.Emit = EmitIR
	}
	if c.Build.Jobs <= 0 {
		c.Build.Jobs = runtime.NumCPU()
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Build.Emit != EmitIR && c.Build.Emit != EmitJSON {
		return fmt.Errorf("invalid emit format %q (want %q or %q)", c.Build.Emit, EmitIR, EmitJSON)
	}
	return nil
}

// Save 保存配置到文件
func (c *Config) Save(path string) error {
	content := generateConfigWithComments(c)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// generateConfigWithComments 生成带注释的配置文件内容
func generateConfigWithComments(c *Config) string {
	var sb strings.Builder

	sb.WriteString("[package]\n")
	sb.WriteString("# 包名（建议使用有意义的名称）\n")
	sb.WriteString(fmt.Sprintf("name = %q\n\n", c.Package.Name))
	sb.WriteString("# 版本号（遵循语义化版本）\n")
	sb.WriteString(fmt.Sprintf("version = %q\n\n", c.Package.Version))
	sb.WriteString("[build]\n")
	sb.WriteString("# 输出格式：ir 或 json\n")
	sb.WriteString(fmt.Sprintf("emit = %q\n\n", c.Build.Emit))
	sb.WriteString("# 并行编译的工作协程数\n")
	sb.WriteString(fmt.Sprintf("jobs = %d\n", c.Build.Jobs))

	return sb.String()
}

// sanitizeName 清理包名
func sanitizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "_", "-")

	var result strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '.' {
			result.WriteRune(r)
		}
	}

	s := result.String()
	if s == "" {
		return "my-app"
	}
	return s
}

// FindConfigFile 从指定路径向上查找配置文件
// 返回配置文件的完整路径，如果找不到则返回空字符串
func FindConfigFile(startPath string) string {
	info, err := os.Stat(startPath)
	if err != nil {
		return ""
	}

	var dir string
	if info.IsDir() {
		dir = startPath
	} else {
		dir = filepath.Dir(startPath)
	}

	dir, err = filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
