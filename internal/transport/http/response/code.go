package response

import (
	"net/http"

	"gestao-marketplace/internal/domain"
)

// kindStatus 业务错误类型 -> HTTP 状态码，只在这里维护
var kindStatus = map[domain.Kind]int{
	domain.KindValidation:      http.StatusBadRequest,
	domain.KindDuplicate:       http.StatusBadRequest,
	domain.KindUnauthorized:    http.StatusUnauthorized,
	domain.KindNotFound:        http.StatusNotFound,
	domain.KindPayloadTooLarge: http.StatusRequestEntityTooLarge,
}

func StatusOf(k domain.Kind) int {
	if s, ok := kindStatus[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}
