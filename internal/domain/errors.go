package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// ErrConnectivity: el almacenamiento remoto no responde (red caída, timeout, sesión inválida).
	// Nunca se propaga como fallo duro en escrituras: dispara el camino caché local + cola.
	ErrConnectivity = errors.New("almacenamiento remoto inalcanzable")
	// ErrRemoteRejected: el remoto respondió pero rechazó la operación (validación, constraint).
	ErrRemoteRejected = errors.New("operación rechazada por el almacenamiento remoto")
	// ErrCorruptCache: el valor guardado en la caché local no se puede interpretar.
	ErrCorruptCache = errors.New("caché local corrupta")
)
