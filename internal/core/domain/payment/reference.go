// internal/core/domain/payment/reference.go
package payment

import "github.com/google/uuid"

// MaxReferenceLength ограничение шлюза на длину ссылки платежа
const MaxReferenceLength = 100

// NewReference генерирует уникальную ссылку платежа (UUIDv4)
func NewReference() string {
	ref := uuid.NewString()
	if len(ref) > MaxReferenceLength {
		ref = ref[:MaxReferenceLength]
	}
	return ref
}
