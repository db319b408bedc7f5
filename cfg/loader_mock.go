package cfg

type MockLoader struct{}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{}, nil
}

func (ml *MockLoader) Load() (*Config, error) {
	return &Config{
		// App
		App: App{
			Name:    "stargazer",
			Version: "0.0.1",
		},

		// Mysql
		Mysql: Mysql{
			Host:                  "127.0.0.1",
			Port:                  "3306",
			Username:              "root",
			Password:              "root",
			Database:              "stargazer",
			MaxIdleConnection:     10,
			MaxOpenConnection:     100,
			MaxLifeTimeConnection: 3600,
		},

		// GithubApi
		GithubApi: GithubApi{
			AccessToken: "",
			ApiUrl:      "https://api.github.com",
			PerPage:     30,
		},

		// Cache
		Cache: Cache{
			MaxAgeDays: 7,
		},

		// Fetcher
		Fetcher: Fetcher{
			MaxParallelFetches: 10,
		},

		// Kafka (empty brokers disable the edge pipeline)
		Kafka: Kafka{
			Brokers:       nil,
			StarEdgeTopic: "star-edges",
			UserStarTopic: "user-stars",
		},

		// Server
		Server: Server{
			Port: 8080,
		},
	}, nil
}
