package internal

import (
	"cwt/backend-api/aws"
	"cwt/backend-api/internal/service"
	"cwt/backend-api/internal/verification"

	"gorm.io/gorm"
)

type Deps struct {
	DB       *gorm.DB
	S3       *aws.S3Client
	Uploader *service.Uploader
	Ledger   *verification.Ledger
}
