package model

// StarEdgeMessage carries one repo-stars write-back to Kafka, so other
// instances can warm their cache from it.
type StarEdgeMessage struct {
	Owner      string   `json:"owner"`
	Repo       string   `json:"repo"`
	Stargazers []string `json:"stargazers"`
}

// UserStarMessage carries one user-stars write-back to Kafka.
type UserStarMessage struct {
	User         string   `json:"user"`
	StarredRepos []string `json:"starred_repos"`
}
