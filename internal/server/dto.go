package server

// TTSRequest is the synthesis request body. Language and Voice are
// optional and fall back to the service defaults.
type TTSRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
	Voice    string `json:"voice,omitempty"`
}

// TTSResponse carries the generated audio both inline and by reference.
// AudioBase64 is the complete WAV container; AudioURL points at the
// download endpoint for the stored artifact.
type TTSResponse struct {
	AudioBase64 string  `json:"audio_base64"`
	AudioURL    string  `json:"audio_url"`
	Text        string  `json:"text"`
	Voice       string  `json:"voice"`
	Language    string  `json:"language"`
	Duration    float64 `json:"duration"`
	GeneratedAt string  `json:"generated_at"`
}

// HealthResponse reports service liveness and whether the synthesis
// engine has finished warming up.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Timestamp   string `json:"timestamp"`
	Version     string `json:"version"`
}

// APIInfoResponse describes the service at the root endpoint.
type APIInfoResponse struct {
	Status             string            `json:"status"`
	Message            string            `json:"message"`
	Version            string            `json:"version"`
	ModelLoaded        bool              `json:"model_loaded"`
	AvailableLanguages []string          `json:"available_languages"`
	AvailableVoices    VoiceCatalog      `json:"available_voices"`
	Documentation      string            `json:"documentation"`
	Endpoints          map[string]string `json:"endpoints"`
}

// VoiceCatalog groups the available voices by gender.
type VoiceCatalog struct {
	Female []string `json:"female"`
	Male   []string `json:"male"`
}

// VoicesResponse lists every supported voice and the default.
type VoicesResponse struct {
	Voices       VoiceCatalog `json:"voices"`
	DefaultVoice string       `json:"default_voice"`
	Total        int          `json:"total"`
}

// LanguagesResponse lists every supported language and the default.
type LanguagesResponse struct {
	Languages       []string `json:"languages"`
	DefaultLanguage string   `json:"default_language"`
}

// CleanupResponse reports the outcome of an on-demand artifact sweep.
type CleanupResponse struct {
	RemovedFiles int    `json:"removed_files"`
	Message      string `json:"message"`
}

// ErrorResponse is the uniform error body for every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
