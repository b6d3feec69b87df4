package watch

import "errors"

var (
	ErrLoginRequired   = errors.New("Inicia sesión para continuar")
	ErrNotOwner        = errors.New("Solo el autor puede modificar este comentario")
	ErrEmptyComment    = errors.New("El comentario no puede estar vacío")
	ErrInvalidRating   = errors.New("La calificación debe estar entre 1 y 5")
	ErrInProgress      = errors.New("Ya hay una operación en curso")
	ErrCommentNotFound = errors.New("Comentario no encontrado")
	ErrNotOpened       = errors.New("No hay una película abierta")
)
