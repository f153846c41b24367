package permission

// Classification is a tool's declared capability category. Mode-based
// auto-decisions (plan, auto-edit) key off it.
type Classification string

const (
	// ClassReadOnly covers tools that inspect state without changing it.
	ClassReadOnly Classification = "read-only"
	// ClassEdit covers tools that create or modify files.
	ClassEdit Classification = "edit"
	// ClassExecute covers tools that run arbitrary commands.
	ClassExecute Classification = "execute"
	// ClassOther covers everything else, including unknown tools.
	ClassOther Classification = "other"
)

// Classifier maps a tool name to its capability category.
type Classifier interface {
	Classify(toolName string) Classification
}

// TableClassifier classifies tools from a lookup table. Unknown tools
// classify as ClassOther.
type TableClassifier map[string]Classification

// Classify implements Classifier.
func (t TableClassifier) Classify(toolName string) Classification {
	if c, ok := t[ToolRoot(toolName)]; ok {
		return c
	}

	return ClassOther
}

// DefaultClassifier returns a classifier covering the qwen core tools.
func DefaultClassifier() Classifier {
	return TableClassifier{
		"read_file":           ClassReadOnly,
		"read_many_files":     ClassReadOnly,
		"list_directory":      ClassReadOnly,
		"ls":                  ClassReadOnly,
		"glob":                ClassReadOnly,
		"grep":                ClassReadOnly,
		"search_file_content": ClassReadOnly,
		"web_search":          ClassReadOnly,
		"web_fetch":           ClassReadOnly,
		"task":                ClassReadOnly,

		"write_file": ClassEdit,
		"edit":       ClassEdit,
		"replace":    ClassEdit,
		"memory":     ClassEdit,
		"todo_write": ClassEdit,

		"run_shell_command": ClassExecute,
		"shell":             ClassExecute,
	}
}
