package models

// Challenge is a bundled, read-only writing prompt with a fixed point reward.
type Challenge struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Points      int64    `json:"points" yaml:"points"`
	Icon        string   `json:"icon" yaml:"icon"`
	Color       string   `json:"color" yaml:"color"`
	Prompts     []string `json:"prompts,omitempty" yaml:"prompts"`
}
