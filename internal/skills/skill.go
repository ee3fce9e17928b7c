package skills

// Category groups related skills for display.
type Category string

const (
	CategoryLanguages Category = "languages"
	CategoryFrontend  Category = "frontend"
	CategoryBackend   Category = "backend"
	CategoryData      Category = "data"
	CategoryCloud     Category = "cloud"
)

// AllCategories returns all categories in display order.
func AllCategories() []Category {
	return []Category{
		CategoryLanguages,
		CategoryFrontend,
		CategoryBackend,
		CategoryData,
		CategoryCloud,
	}
}

// CategoryDisplayName returns a human-readable name for a category.
func CategoryDisplayName(c Category) string {
	switch c {
	case CategoryLanguages:
		return "Programming Languages"
	case CategoryFrontend:
		return "Frontend"
	case CategoryBackend:
		return "Backend"
	case CategoryData:
		return "Data & Storage"
	case CategoryCloud:
		return "Cloud & DevOps"
	default:
		return string(c)
	}
}

// Skill is a technical skill that can be assessed.
type Skill struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Category    Category `yaml:"category" json:"category"`
	Description string   `yaml:"description" json:"description"`
	Keywords    []string `yaml:"keywords" json:"keywords,omitempty"`
}
