package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/prefeitura-rio/app-fomento/internal/observability"
	"github.com/prefeitura-rio/app-fomento/internal/redisclient"
	"github.com/prefeitura-rio/app-fomento/internal/schema"
	"github.com/prefeitura-rio/app-fomento/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const telefonePath = "contato.telefone"

// ActivityLogger records user actions. *UserLogService implements it.
type ActivityLogger interface {
	AppendAsync(email string, entry models.LogEntry)
}

// ProponenteService persists proponente records
type ProponenteService struct {
	collection *mongo.Collection
	cache      *redisclient.Client
	activity   ActivityLogger
	lockTTL    time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewProponenteService creates a new ProponenteService instance
func NewProponenteService(database *mongo.Database, collection string, cache *redisclient.Client, activity ActivityLogger, lockTTL time.Duration, logger *zap.Logger) *ProponenteService {
	return &ProponenteService{
		collection: database.Collection(collection),
		cache:      cache,
		activity:   activity,
		lockTTL:    lockTTL,
		logger:     logger.Named("proponente_service"),
		now:        time.Now,
	}
}

func submitLockKey(userID string, tipo models.Tipo) string {
	return fmt.Sprintf("proponente:submit:%s:%s", userID, tipo)
}

// prepare normalizes dados against the schema of tipo, checks document
// numbers, formats the phone and validates required fields.
func prepare(tipo models.Tipo, dados *models.Section, logger *zap.Logger) (*models.Section, error) {
	s, err := schema.For(tipo)
	if err != nil {
		return nil, err
	}

	out := schema.Normalize(schema.FormStateFromSection(dados, s), s)

	var invalid []string
	s.Walk(func(path string, f schema.Field) {
		v, ok := out.Get(path)
		if !ok || v.Empty() {
			return
		}
		var valid bool
		switch f.Name {
		case "cpf", "cpfResponsavel":
			valid = utils.ValidateCPF(v.Text)
		case "cnpj":
			valid = utils.ValidateCNPJ(v.Text)
		default:
			return
		}
		if !valid {
			invalid = append(invalid, path)
			logger.Warn("invalid document number",
				zap.String("tipo", string(tipo)),
				zap.String("path", path),
				zap.String("document", observability.MaskDocument(v.Text)))
			return
		}
		out.Set(path, models.Text(utils.OnlyDigits(v.Text)))
	})
	if len(invalid) > 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidDocument, strings.Join(invalid, ", "))
	}

	if v, ok := out.Get(telefonePath); ok && !v.Empty() {
		if e164, err := utils.NormalizePhone(v.Text); err == nil {
			out.Set(telefonePath, models.Text(e164))
		}
	}

	candidate := &models.Proponente{Tipo: tipo, Dados: *out}
	if missing := schema.Missing(candidate, s); len(missing) > 0 {
		return nil, &models.ValidationError{Missing: missing}
	}
	return out, nil
}

// Create validates and inserts a new record. Concurrent submissions of the
// same user and tipo are rejected with ErrSubmissionInProgress.
func (s *ProponenteService) Create(ctx context.Context, record *models.Proponente) (*models.Proponente, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "create_proponente")
	defer span.End()

	if record == nil {
		return nil, fmt.Errorf("%w: empty record", models.ErrIncompleteRecord)
	}
	if record.UserID == "" {
		return nil, models.ErrUnauthenticated
	}
	if strings.TrimSpace(record.CityID) == "" {
		return nil, &models.ValidationError{Missing: []string{"cityId"}}
	}
	span.SetAttributes(
		attribute.String("proponente.tipo", string(record.Tipo)),
		attribute.String("proponente.city_id", record.CityID),
	)

	dados, err := prepare(record.Tipo, &record.Dados, s.logger)
	if err != nil {
		observability.Registrations.WithLabelValues(string(record.Tipo), "invalid").Inc()
		return nil, err
	}

	release, err := s.cache.Lock(ctx, submitLockKey(record.UserID, record.Tipo), uuid.NewString(), s.lockTTL)
	switch {
	case errors.Is(err, redisclient.ErrLockHeld):
		observability.Registrations.WithLabelValues(string(record.Tipo), "duplicate").Inc()
		return nil, models.ErrSubmissionInProgress
	case err != nil:
		s.logger.Warn("submission lock unavailable, continuing without it", zap.Error(err))
	default:
		defer func() {
			if err := release(context.Background()); err != nil {
				s.logger.Warn("failed to release submission lock", zap.Error(err))
			}
		}()
	}

	now := s.now().UTC()
	doc := models.Proponente{
		Tipo:      record.Tipo,
		UserID:    record.UserID,
		UserEmail: record.UserEmail,
		CityID:    strings.TrimSpace(record.CityID),
		Dados:     *dados,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := utils.InsertOneWithTimeout(ctx, s.collection, doc, utils.DefaultQueryTimeout)
	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		observability.DatabaseOperations.WithLabelValues("create_proponente", "error").Inc()
		observability.Registrations.WithLabelValues(string(record.Tipo), "error").Inc()
		return nil, fmt.Errorf("failed to insert proponente: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		doc.ID = id
	}
	observability.DatabaseOperations.WithLabelValues("create_proponente", "success").Inc()
	observability.Registrations.WithLabelValues(string(record.Tipo), "success").Inc()

	s.logger.Info("proponente registered",
		zap.String("id", doc.ID.Hex()),
		zap.String("tipo", string(doc.Tipo)),
		zap.String("city_id", doc.CityID),
		zap.String("user", observability.MaskEmail(doc.UserEmail)))

	if s.activity != nil && doc.UserEmail != "" {
		s.activity.AppendAsync(doc.UserEmail, models.LogEntry{
			Action:    models.LogActionCadastroProponente,
			Timestamp: now,
			Metadata: map[string]string{
				"proponenteId": doc.ID.Hex(),
				"tipo":         string(doc.Tipo),
				"cityId":       doc.CityID,
			},
		})
	}
	return &doc, nil
}

// Get returns the record with id
func (s *ProponenteService) Get(ctx context.Context, id string) (*models.Proponente, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidID, id)
	}

	ctx, span := utils.TraceDatabaseFind(ctx, s.collection.Name(), "_id")
	defer span.End()

	var record models.Proponente
	if err := utils.FindOneWithTimeout(ctx, s.collection, bson.M{"_id": oid}, &record, utils.DefaultQueryTimeout); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		utils.RecordErrorInSpan(span, err, nil)
		return nil, fmt.Errorf("failed to get proponente: %w", err)
	}
	return &record, nil
}

func cityFilter(cityID string, pred Predicate) bson.M {
	filter := pred.Filter()
	filter["cityId"] = cityID
	return filter
}

// Find returns every record of cityID matched by pred
func (s *ProponenteService) Find(ctx context.Context, cityID string, pred Predicate) ([]models.Proponente, error) {
	ctx, span := utils.TraceDatabaseFind(ctx, s.collection.Name(), "cityId")
	defer span.End()

	records := []models.Proponente{}
	if err := utils.FindAllWithTimeout(ctx, s.collection, cityFilter(cityID, pred), &records, utils.DefaultQueryTimeout); err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"city_id": cityID})
		observability.DatabaseOperations.WithLabelValues("find_proponentes", "error").Inc()
		return nil, fmt.Errorf("failed to find proponentes: %w", err)
	}
	observability.DatabaseOperations.WithLabelValues("find_proponentes", "success").Inc()
	return records, nil
}

// ListByCity returns a page of the records of cityID matched by pred, newest first
func (s *ProponenteService) ListByCity(ctx context.Context, cityID string, pred Predicate, page, perPage int) (*models.PaginatedProponentes, error) {
	ctx, span := utils.TraceDatabaseFind(ctx, s.collection.Name(), "cityId")
	defer span.End()

	filter := cityFilter(cityID, pred)
	total, err := utils.CountDocumentsWithTimeout(ctx, s.collection, filter, utils.DefaultQueryTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to count proponentes: %w", err)
	}

	records := []models.Proponente{}
	if err := utils.FindAllWithTimeout(ctx, s.collection, filter, &records, utils.DefaultQueryTimeout, utils.PageOptions(page, perPage)); err != nil {
		return nil, fmt.Errorf("failed to list proponentes: %w", err)
	}

	return &models.PaginatedProponentes{
		Data: records,
		Pagination: models.Pagination{
			Page:       page,
			PerPage:    perPage,
			Total:      int(total),
			TotalPages: utils.TotalPages(total, perPage),
		},
	}, nil
}

// ListByUser returns every record owned by userID
func (s *ProponenteService) ListByUser(ctx context.Context, userID string) ([]models.Proponente, error) {
	ctx, span := utils.TraceDatabaseFind(ctx, s.collection.Name(), "userId")
	defer span.End()

	records := []models.Proponente{}
	opts := utils.PageOptions(1, 0)
	if err := utils.FindAllWithTimeout(ctx, s.collection, bson.M{"userId": userID}, &records, utils.DefaultQueryTimeout, opts); err != nil {
		return nil, fmt.Errorf("failed to list proponentes of user: %w", err)
	}
	return records, nil
}

// Update replaces the answers of a record. Tipo and city cannot change and
// the new answers must be complete.
func (s *ProponenteService) Update(ctx context.Context, id string, update models.ProponenteUpdate) (*models.Proponente, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Tipo != "" && update.Tipo != current.Tipo {
		return nil, fmt.Errorf("%w: tipo", models.ErrImmutableField)
	}
	if update.CityID != "" && update.CityID != current.CityID {
		return nil, fmt.Errorf("%w: cityId", models.ErrImmutableField)
	}

	dados, err := prepare(current.Tipo, &update.Dados, s.logger)
	if err != nil {
		return nil, err
	}

	ctx, span := utils.TraceDatabaseUpdate(ctx, s.collection.Name(), "_id", false)
	defer span.End()

	now := s.now().UTC()
	set := bson.M{"$set": bson.M{"dados": dados, "updatedAt": now}}
	if _, err := utils.UpdateOneWithTimeout(ctx, s.collection, bson.M{"_id": current.ID}, set, utils.DefaultQueryTimeout); err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		observability.DatabaseOperations.WithLabelValues("update_proponente", "error").Inc()
		return nil, fmt.Errorf("failed to update proponente: %w", err)
	}
	observability.DatabaseOperations.WithLabelValues("update_proponente", "success").Inc()

	current.Dados = *dados
	current.UpdatedAt = now
	return current, nil
}

// Delete removes the record with id
func (s *ProponenteService) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %q", models.ErrInvalidID, id)
	}

	ctx, span := utils.TraceDatabaseUpdate(ctx, s.collection.Name(), "_id", false)
	defer span.End()

	result, err := utils.DeleteOneWithTimeout(ctx, s.collection, bson.M{"_id": oid}, utils.DefaultQueryTimeout)
	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		return fmt.Errorf("failed to delete proponente: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	observability.DatabaseOperations.WithLabelValues("delete_proponente", "success").Inc()
	return nil
}
