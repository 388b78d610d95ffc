package common

// BatchTarget describes a set of files compressed together by the batch runner.
type BatchTarget struct {
	Name      string   `yaml:"name" koanf:"name" json:"name"`
	Include   []string `yaml:"include" koanf:"include" json:"include"`
	Exclude   []string `yaml:"exclude,omitempty" koanf:"exclude,omitempty" json:"exclude,omitempty"`
	OutputDir string   `yaml:"output-dir" koanf:"output-dir" json:"outputDir"`
	Alphabet  string   `yaml:"alphabet,omitempty" koanf:"alphabet,omitempty" json:"alphabet,omitempty"`
	// 压缩后解压并比对原文件
	Verify bool `yaml:"verify,omitempty" koanf:"verify,omitempty" json:"verify,omitempty"`
}

// Extension is appended to the name of every compressed file
const Extension = ".huf"
