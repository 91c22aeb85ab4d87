package server

import "github.com/ziadkadry99/commitfind/internal/amplifier"

// LoadRequest is the body of POST /load. Provider credentials are never
// read from the request; they come from internal/auth/env on the server
// process, the same way internal/llmchat.NewProvider resolves them for the
// CLI, so a malformed or malicious body can never exfiltrate a key.
type LoadRequest struct {
	ProjectName        string   `json:"project_name"`
	Head               string   `json:"head"`
	IgnoreFiles        []string `json:"ignore_files"`
	LLMProvider        string   `json:"llm_provider"`
	LLMModel           string   `json:"llm_model"`
	EmbeddingsProvider string   `json:"embeddings_provider"`
	EmbeddingsModel    string   `json:"embeddings_model"`
	AmplificationLevel string   `json:"amplification_level"`
	DepthLevel         int      `json:"depth_level"`
	UseMockLLM         bool     `json:"use_mock_llm"`
	LLMThreads         int      `json:"llm_threads"`
}

// AddRepositoryRequest is the body of POST /add-repository.
type AddRepositoryRequest struct {
	CodeHostURL string `json:"codehost_url"`
	APIKey      string `json:"api_key"`
	LoadRequest
}

// FetchAndCheckoutRequest is the body of POST /fetch-and-checkout.
type FetchAndCheckoutRequest struct {
	CodeHostURL string `json:"codehost_url"`
	BranchName  string `json:"branch_name"`
	CommitOID   string `json:"commit_oid"`
	APIKey      string `json:"api_key"`
	LoadRequest
}

// InferFileRequest is the body of POST /infer-file.
type InferFileRequest struct {
	Prompt        string   `json:"prompt"`
	Project       string   `json:"project"`
	Model         string   `json:"model"`
	MatchStrength string   `json:"match_strength"`
	IgnoreFiles   []string `json:"ignore_files"`
	Head          string   `json:"head"`
}

// FilePathEntry names one file path in a request/response body.
type FilePathEntry struct {
	Path string `json:"path"`
}

// FileSearchResponse is one entry in the /infer-file response.
type FileSearchResponse struct {
	OID        string          `json:"oid"`
	Similarity float64         `json:"similarity"`
	FilePaths  []FilePathEntry `json:"file_paths"`
	PathType   string          `json:"path_type"`
}

// RetrieveFileContentsRequest is the body of POST /retrieve-file-contents.
type RetrieveFileContentsRequest struct {
	ProjectName string          `json:"project_name"`
	FilePaths   []FilePathEntry `json:"file_paths"`
	IgnoreFiles []string        `json:"ignore_files"`
}

// RetrieveFileContentsResponse is the response of POST /retrieve-file-contents.
type RetrieveFileContentsResponse struct {
	Contents           map[string]string `json:"contents"`
	RetrievedFilePaths []string          `json:"retrieved_file_paths"`
}

// StatusResponse is the response of GET /status.
type StatusResponse struct {
	LockFilePresent  bool    `json:"lock_file_present"`
	LockTimeDuration float64 `json:"lock_time_duration"`
	ErrorLogs        string  `json:"error_logs,omitempty"`
}

// FileSummaryResponse is one entry in the GET /get-file-summary response.
type FileSummaryResponse struct {
	FilePath string `json:"file_path"`
	Summary  string `json:"summary"`
}

// TokenCountRequest is the body of POST /*/token-count.
type TokenCountRequest struct {
	ProjectName string   `json:"project_name"`
	Head        string   `json:"head"`
	IgnoreFiles []string `json:"ignore_files"`
	DepthLevel  int      `json:"depth_level"`
}

// TokenCountResponse is the response of POST /*/token-count.
type TokenCountResponse struct {
	EmbeddingTokens int `json:"embedding_tokens"`
	InferenceTokens int `json:"inference_tokens"`
}

func parseAmplificationLevel(s string) amplifier.Level {
	switch s {
	case "LOW":
		return amplifier.Low
	case "MID":
		return amplifier.Mid
	case "HIGH":
		return amplifier.High
	default:
		return amplifier.Off
	}
}
