package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed defaults in the
// binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names fall back to the built-in default when one exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptQueryRewrite turns a user question into a standalone search
	// query. The template expects a %s placeholder for the question.
	PromptQueryRewrite = "query_rewrite"

	// PromptAnswer generates the final answer. The template expects %s
	// placeholders for the context block and the question.
	PromptAnswer = "answer"

	// PromptAnswerNoContext generates an answer when neither retrieval
	// nor web search produced context. Expects a %s placeholder for the
	// question.
	PromptAnswerNoContext = "answer_no_context"
)
