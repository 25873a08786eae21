package service

import "errors"

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionBusy          = errors.New("session is being processed")
	ErrSessionNotProcessing = errors.New("session has no processing job to cancel")
	ErrSessionNotResumable  = errors.New("only completed sessions can be resumed")
	ErrResumeFailed         = errors.New("resume failed, session left unchanged")
	ErrRegenerationFailed   = errors.New("document regeneration failed")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrTemplateNotFound     = errors.New("template not found")
)
