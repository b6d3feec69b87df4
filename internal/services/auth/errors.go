package auth

import "errors"

var (
	ErrPasswordMismatch = errors.New("Las contraseñas no coinciden")
	ErrWeakPassword     = errors.New("La contraseña no cumple con los requisitos mínimos")
	ErrInvalidToken     = errors.New("Token inválido o expirado")
	ErrInvalidAuthData  = errors.New("Respuesta de inicio de sesión inválida")
)
