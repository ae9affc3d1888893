package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the settings for one proxy process. A YAML file may supply
// any of them; flags given on the command line take precedence.
type Config struct {
	Port       int    `yaml:"port"`
	Target     string `yaml:"target"`
	ClearCache bool   `yaml:"clearCache"`
	DB         string `yaml:"db"`
	Metrics    string `yaml:"metrics"`
}

func getConfig(filename string) (Config, error) {
	config := defaultConfig()
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = yaml.Unmarshal(configBytes, &config)
	return config, err
}

func defaultConfig() Config {
	return Config{
		Port: 3000,
	}
}
