// flowork/config/config.go
package config

import (
	"encoding/json"
	"os"
	"sync"
)

type Config struct {
	ListenAddr       string `json:"listenAddr"`
	BrandID          int64  `json:"brandId"`
	StoreID          int64  `json:"storeId"`
	ExcelPreviewRows int    `json:"excelPreviewRows"`
	ExcelMaxColumns  int    `json:"excelMaxColumns"`
}

var (
	cfg Config
	mu  sync.RWMutex
)

const configFilePath = "./flowork_config.json"

func applyDefaults(c *Config) {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.BrandID == 0 {
		c.BrandID = 1
	}
	if c.StoreID == 0 {
		c.StoreID = 1
	}
	if c.ExcelPreviewRows == 0 {
		c.ExcelPreviewRows = 5
	}
	if c.ExcelMaxColumns == 0 {
		c.ExcelMaxColumns = 26
	}
}

func LoadConfig() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	file, err := os.ReadFile(configFilePath)
	if err != nil {
		var def Config
		applyDefaults(&def)
		cfg = def
		if os.IsNotExist(err) {
			return def, nil
		}
		// 읽기 실패 시에도 기본값으로는 뜬다.
		return def, err
	}

	var tempCfg Config
	if err := json.Unmarshal(file, &tempCfg); err != nil {
		var def Config
		applyDefaults(&def)
		cfg = def
		return def, err
	}
	applyDefaults(&tempCfg)
	cfg = tempCfg

	return cfg, nil
}

func SaveConfig(newCfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	applyDefaults(&newCfg)

	file, err := json.MarshalIndent(newCfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(configFilePath, file, 0644); err != nil {
		return err
	}
	cfg = newCfg
	return nil
}

func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}
