package cfg

type (
	App struct {
		Name    string
		Version string
	}

	Mysql struct {
		Host                  string
		Port                  string
		Username              string
		Password              string
		Database              string
		MaxIdleConnection     int
		MaxOpenConnection     int
		MaxLifeTimeConnection int
	}

	GithubApi struct {
		AccessToken string
		ApiUrl      string
		PerPage     int
	}

	Cache struct {
		// MaxAgeDays is the freshness window. Rows older than this are
		// treated as misses on read; they are never deleted.
		MaxAgeDays int
	}

	Fetcher struct {
		MaxParallelFetches int
	}

	Kafka struct {
		Brokers       []string
		StarEdgeTopic string
		UserStarTopic string
	}

	Server struct {
		Port int
	}
)

type Config struct {
	App       App
	Mysql     Mysql
	GithubApi GithubApi
	Cache     Cache
	Fetcher   Fetcher
	Kafka     Kafka
	Server    Server
}
