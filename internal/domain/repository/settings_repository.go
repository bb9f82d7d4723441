package repository

// SettingsRepository define el puerto del almacén clave-valor de
// configuración del emisor. La actualización parcial nunca borra claves no
// incluidas: solo upsert de las presentes.
type SettingsRepository interface {
	GetAll() (map[string]string, error)
	Set(key, value string) error
	SetMany(values map[string]string) error
}
