package config

import "testing"

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("TRIPD_DEEPSEEK_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded without an API key, want error")
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("TRIPD_DEEPSEEK_API_KEY", "sk-test")
	t.Setenv("TRIPD_PORT", "9999")
	t.Setenv("TRIPD_DEEPSEEK_BASE_URL", "https://example.com/v1/")
	t.Setenv("TRIPD_AUTH_TOKENS", "tok1=user-a,tok2=user-b")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.LLM.Model != "deepseek-chat" {
		t.Errorf("Model = %q, want deepseek-chat default", cfg.LLM.Model)
	}
	if cfg.LLM.BaseURL != "https://example.com/v1" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", cfg.LLM.BaseURL)
	}
	if cfg.Chat.HistoryWindow != 6 || cfg.Chat.MemoryLimit != 5 {
		t.Errorf("Chat defaults = %+v, want window 6 / memory 5", cfg.Chat)
	}
	if cfg.Auth.Tokens["tok2"] != "user-b" {
		t.Errorf("Tokens = %v, want tok2 mapped to user-b", cfg.Auth.Tokens)
	}
	if cfg.Storage.DataDir == "" {
		t.Error("DataDir empty, want default")
	}
}
