// Package receipts handles receipt upload, OCR extraction and the explicit
// link between a receipt and a transaction.
package receipts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"personal-finance-backend/internal/models"
	"personal-finance-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("receipt or transaction not found")

// Extractor is the OCR collaborator. It is a black box to this service: it
// receives the stored file and returns raw text plus whatever structured
// fields it could extract, all of them optional.
type Extractor interface {
	Extract(path, mimeType string) (*ExtractionResult, error)
}

// ExtractionResult carries the OCR output for one receipt.
type ExtractionResult struct {
	RawText string
	Data    models.ReceiptData
	Model   string
}

// StubExtractor stands in until a real OCR backend is wired up. It returns no
// structured fields; downstream code must cope with their absence anyway.
type StubExtractor struct{}

func (StubExtractor) Extract(path, mimeType string) (*ExtractionResult, error) {
	return &ExtractionResult{
		RawText: "OCR not configured",
		Model:   "stub",
	}, nil
}

type Service struct {
	receipts     *repository.ReceiptRepository
	transactions *repository.TransactionRepository
	extractor    Extractor
	uploadDir    string
	log          logrus.FieldLogger
}

func NewService(
	receipts *repository.ReceiptRepository,
	transactions *repository.TransactionRepository,
	extractor Extractor,
	uploadDir string,
	log logrus.FieldLogger,
) *Service {
	return &Service{
		receipts:     receipts,
		transactions: transactions,
		extractor:    extractor,
		uploadDir:    uploadDir,
		log:          log,
	}
}

// Upload stores the file under uploadDir/<user>/<uuid><ext>, creates the
// receipt record and runs OCR on it. OCR failure marks the receipt failed but
// does not fail the upload.
func (s *Service) Upload(userID uuid.UUID, filename, mimeType string, content io.Reader) (*models.Receipt, error) {
	userDir := filepath.Join(s.uploadDir, userID.String())
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}

	storedPath := filepath.Join(userDir, uuid.New().String()+filepath.Ext(filename))
	f, err := os.Create(storedPath)
	if err != nil {
		return nil, fmt.Errorf("storing receipt: %w", err)
	}
	size, err := io.Copy(f, content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(storedPath)
		return nil, fmt.Errorf("storing receipt: %w", err)
	}

	receipt := &models.Receipt{
		ID:               uuid.New(),
		UserID:           userID,
		OriginalFilename: filename,
		StoredPath:       storedPath,
		FileSize:         size,
		MimeType:         mimeType,
		Status:           models.ReceiptStatusPending,
	}
	if err := s.receipts.Create(receipt); err != nil {
		os.Remove(storedPath)
		return nil, err
	}

	return s.runExtraction(receipt)
}

func (s *Service) runExtraction(receipt *models.Receipt) (*models.Receipt, error) {
	receipt.Status = models.ReceiptStatusProcessing
	if err := s.receipts.Save(receipt); err != nil {
		return nil, err
	}

	result, err := s.extractor.Extract(receipt.StoredPath, receipt.MimeType)
	if err != nil {
		receipt.Status = models.ReceiptStatusFailed
		receipt.ErrorMessage = err.Error()
		s.log.WithError(err).WithField("receipt_id", receipt.ID).Warn("receipt extraction failed")
		if saveErr := s.receipts.Save(receipt); saveErr != nil {
			return nil, saveErr
		}
		return receipt, nil
	}

	now := time.Now().UTC()
	receipt.OCRRawText = result.RawText
	receipt.OCRModel = result.Model
	receipt.OCRProcessedAt = &now
	receipt.Status = models.ReceiptStatusCompleted
	receipt.ErrorMessage = ""
	if raw, err := json.Marshal(result.Data); err == nil {
		receipt.ExtractedData = datatypes.JSON(raw)
	}

	if err := s.receipts.Save(receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

func (s *Service) Get(id, userID uuid.UUID) (*models.Receipt, error) {
	receipt, err := s.receipts.GetByID(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return receipt, nil
}

func (s *Service) List(userID uuid.UUID, limit int) ([]models.Receipt, error) {
	return s.receipts.ListByUser(userID, limit)
}

// Link attaches a receipt to a transaction. Both must exist and belong to the
// caller; match scores never link anything implicitly.
func (s *Service) Link(receiptID, transactionID, userID uuid.UUID) (*models.Receipt, error) {
	receipt, err := s.Get(receiptID, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.transactions.GetByID(transactionID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	receipt.TransactionID = &transactionID
	if err := s.receipts.Save(receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

// Unlink clears the receipt's transaction reference.
func (s *Service) Unlink(receiptID, userID uuid.UUID) (*models.Receipt, error) {
	receipt, err := s.Get(receiptID, userID)
	if err != nil {
		return nil, err
	}

	receipt.TransactionID = nil
	if err := s.receipts.Save(receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

// Delete removes the record and best-effort removes the stored file.
func (s *Service) Delete(id, userID uuid.UUID) error {
	receipt, err := s.Get(id, userID)
	if err != nil {
		return err
	}
	if err := s.receipts.Delete(receipt); err != nil {
		return err
	}
	if err := os.Remove(receipt.StoredPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.WithError(err).WithField("path", receipt.StoredPath).Warn("failed to remove receipt file")
	}
	return nil
}
