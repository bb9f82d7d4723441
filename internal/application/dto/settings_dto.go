package dto

// SettingsResponse todas las claves de configuración del emisor.
type SettingsResponse struct {
	Values map[string]string `json:"values"`
}

// UpdateSettingsRequest upsert parcial: las claves ausentes no se tocan.
type UpdateSettingsRequest struct {
	Values map[string]string `json:"values"`
}
