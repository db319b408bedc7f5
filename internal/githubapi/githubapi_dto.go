// Mapping of the GitHub API payloads consumed by the caller. Only the
// fields we read are declared.

package githubapi

type StargazerResponse struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

type StarredRepoResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}
