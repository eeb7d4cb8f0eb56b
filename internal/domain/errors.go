package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInsufficientStock  = errors.New("stock insuficiente")

	// Verificación de traslados. Los mensajes de los códigos son los que el
	// frontend muestra tal cual al usuario, por eso van en inglés.
	ErrInvalidKeeperCode     = errors.New("Invalid Keeper Code")
	ErrInvalidControllerCode = errors.New("Invalid Controller Code")
	ErrInvalidTransferState  = errors.New("el traslado no está en el estado esperado")
)
