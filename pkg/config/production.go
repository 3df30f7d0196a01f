package config

func loadProductionConfig(cfg *Config) {
	cfg.CoverDir = "/data/covers"
	cfg.DatabaseFilePath = "/data/discvault.sqlite"
	cfg.ServerHost = "0.0.0.0"
}
