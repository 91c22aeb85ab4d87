package store

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

var nonWordRE = regexp.MustCompile(`[^\w-]`)

// ProjectName derives a deterministic project name from a code-host URL:
// lowercase host, org/user, and repo name (".git" suffix stripped) joined
// with "_", every character other than a word character or "-" (including
// the dots of the host) replaced by "_". Ported from the original
// url_to_folder_name.
func ProjectName(codeHostURL string) (string, error) {
	raw := strings.TrimRight(strings.TrimSpace(codeHostURL), "/")
	raw = strings.TrimSuffix(raw, ".git")

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "https", "git":
	default:
		return "", &ErrUnsupportedScheme{Scheme: u.Scheme}
	}

	path := strings.Trim(u.Path, "/")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", &ErrInvalidRepoURL{URL: codeHostURL}
	}
	user, repo := parts[0], parts[1]

	name := u.Host + "_" + user + "_" + repo
	name = nonWordRE.ReplaceAllString(name, "_")
	return strings.ToLower(name), nil
}

// ErrUnsupportedScheme is returned by ProjectName for an unrecognized URL scheme.
type ErrUnsupportedScheme struct{ Scheme string }

func (e *ErrUnsupportedScheme) Error() string { return "store: unsupported URL scheme: " + e.Scheme }

// ErrInvalidRepoURL is returned by ProjectName when the URL lacks a user/repo path.
type ErrInvalidRepoURL struct{ URL string }

func (e *ErrInvalidRepoURL) Error() string { return "store: invalid repository URL: " + e.URL }

// Layout mirrors the original DataDir enum: every persisted artifact for a
// project lives under <base>/<project>/...
type Layout struct {
	base    string
	project string
}

// NewLayout builds the directory layout for a project under baseDir.
func NewLayout(baseDir, projectName string) Layout {
	return Layout{base: baseDir, project: projectName}
}

// Root is <base>/<project>, the STORE directory.
func (l Layout) Root() string { return filepath.Join(l.base, l.project) }

// RepoGitDir is the checked-out working copy, <base>/<project>/repo/git.
func (l Layout) RepoGitDir() string { return filepath.Join(l.base, l.project, "repo", "git") }

// CommitsLogsPath is <base>/<project>/commits/logs/commits_logs.json.
func (l Layout) CommitsLogsPath() string {
	return filepath.Join(l.base, l.project, "commits", "logs", "commits_logs.json")
}

// CommitsEmbeddingsPath is <base>/<project>/commits/embeddings/commits_embeddings.json.
func (l Layout) CommitsEmbeddingsPath() string {
	return filepath.Join(l.base, l.project, "commits", "embeddings", "commits_embeddings.json")
}

// FilesEmbeddingsPath is <base>/<project>/contents/embeddings/files_embeddings.json.
func (l Layout) FilesEmbeddingsPath() string {
	return filepath.Join(l.base, l.project, "contents", "embeddings", "files_embeddings.json")
}

// StatusPath is <base>/<project>/status.json.
func (l Layout) StatusPath() string { return filepath.Join(l.base, l.project, "status.json") }

// LogsPath is <base>/<project>/logs.txt, the project's error-log file.
func (l Layout) LogsPath() string { return filepath.Join(l.base, l.project, "logs.txt") }

// LockPath is <base>/<project>/repo.lock.
func (l Layout) LockPath() string { return filepath.Join(l.base, l.project, "repo.lock") }

// Project returns the project name this layout was built for.
func (l Layout) Project() string { return l.project }
