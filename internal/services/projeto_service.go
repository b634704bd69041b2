package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/prefeitura-rio/app-fomento/internal/observability"
	"github.com/prefeitura-rio/app-fomento/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ProponenteGetter loads proponente records. *ProponenteService implements it.
type ProponenteGetter interface {
	Get(ctx context.Context, id string) (*models.Proponente, error)
}

// Notifier queues e-mail notifications. *EmailService implements it.
type Notifier interface {
	Enqueue(msg EmailMessage) bool
}

// ProjetoService manages project applications and their review
type ProjetoService struct {
	collection  *mongo.Collection
	proponentes ProponenteGetter
	notifier    Notifier
	activity    ActivityLogger
	logger      *zap.Logger
	now         func() time.Time
}

// NewProjetoService creates a new ProjetoService instance
func NewProjetoService(database *mongo.Database, collection string, proponentes ProponenteGetter, notifier Notifier, activity ActivityLogger, logger *zap.Logger) *ProjetoService {
	return &ProjetoService{
		collection:  database.Collection(collection),
		proponentes: proponentes,
		notifier:    notifier,
		activity:    activity,
		logger:      logger.Named("projeto_service"),
		now:         time.Now,
	}
}

func (s *ProjetoService) notify(p *models.Projeto, subject, body string) {
	if s.notifier == nil || p.UserEmail == "" {
		return
	}
	s.notifier.Enqueue(EmailMessage{
		To:      p.UserEmail,
		Subject: subject,
		Body:    body,
		Tags:    map[string]string{"projetoId": p.ID.Hex(), "cityId": p.CityID},
	})
}

func (s *ProjetoService) record(p *models.Projeto, action string) {
	if s.activity == nil || p.UserEmail == "" {
		return
	}
	s.activity.AppendAsync(p.UserEmail, models.LogEntry{
		Action:    action,
		Timestamp: s.now().UTC(),
		Metadata:  map[string]string{"projetoId": p.ID.Hex(), "editalId": p.EditalID},
	})
}

// Create opens a draft project for a proponente owned by the caller
func (s *ProjetoService) Create(ctx context.Context, session *models.Session, input models.ProjetoInput) (*models.Projeto, error) {
	if session == nil {
		return nil, models.ErrUnauthenticated
	}
	ctx, span := utils.TraceBusinessLogic(ctx, "create_projeto")
	defer span.End()

	proponente, err := s.proponentes.Get(ctx, input.ProponenteID)
	if err != nil {
		return nil, err
	}
	if proponente.UserID != session.UID {
		return nil, models.ErrAccessDenied
	}

	now := s.now().UTC()
	projeto := models.Projeto{
		ProponenteID:    proponente.ID,
		UserID:          session.UID,
		UserEmail:       session.Email,
		CityID:          proponente.CityID,
		EditalID:        strings.TrimSpace(input.EditalID),
		Titulo:          strings.TrimSpace(input.Titulo),
		Resumo:          input.Resumo,
		Categoria:       input.Categoria,
		ValorSolicitado: input.ValorSolicitado,
		Status:          models.ProjetoRascunho,
		Avaliacoes:      []models.Avaliacao{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	result, err := utils.InsertOneWithTimeout(ctx, s.collection, projeto, utils.DefaultQueryTimeout)
	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		observability.DatabaseOperations.WithLabelValues("create_projeto", "error").Inc()
		return nil, fmt.Errorf("failed to insert projeto: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		projeto.ID = id
	}
	observability.DatabaseOperations.WithLabelValues("create_projeto", "success").Inc()

	s.notify(&projeto, "Projeto criado",
		fmt.Sprintf("Seu projeto \"%s\" foi criado como rascunho.", projeto.Titulo))
	s.record(&projeto, models.LogActionCriarProjeto)
	return &projeto, nil
}

// Get returns the project with id
func (s *ProjetoService) Get(ctx context.Context, id string) (*models.Projeto, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidID, id)
	}

	ctx, span := utils.TraceDatabaseFind(ctx, s.collection.Name(), "_id")
	defer span.End()

	var projeto models.Projeto
	if err := utils.FindOneWithTimeout(ctx, s.collection, bson.M{"_id": oid}, &projeto, utils.DefaultQueryTimeout); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get projeto: %w", err)
	}
	return &projeto, nil
}

// transition applies update to the project only while it is still in from.
// A lost race or a wrong starting state yields ErrInvalidStatusTransition.
func (s *ProjetoService) transition(ctx context.Context, id primitive.ObjectID, from models.ProjetoStatus, update interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultQueryTimeout)
	defer cancel()

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id, "status": from}, update)
	if err != nil {
		return fmt.Errorf("failed to update projeto: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrInvalidStatusTransition
	}
	return nil
}

// Submit sends a draft project of the caller for review
func (s *ProjetoService) Submit(ctx context.Context, session *models.Session, id string) (*models.Projeto, error) {
	if session == nil {
		return nil, models.ErrUnauthenticated
	}
	projeto, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if projeto.UserID != session.UID {
		return nil, models.ErrAccessDenied
	}
	if !projeto.Status.CanTransition(models.ProjetoEnviado) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidStatusTransition, projeto.Status, models.ProjetoEnviado)
	}

	now := s.now().UTC()
	update := bson.M{"$set": bson.M{"status": models.ProjetoEnviado, "enviadoEm": now, "updatedAt": now}}
	if err := s.transition(ctx, projeto.ID, projeto.Status, update); err != nil {
		return nil, err
	}
	projeto.Status = models.ProjetoEnviado
	projeto.EnviadoEm = &now
	projeto.UpdatedAt = now

	s.notify(projeto, "Projeto enviado",
		fmt.Sprintf("Seu projeto \"%s\" foi enviado para avaliação.", projeto.Titulo))
	s.record(projeto, models.LogActionEnviarProjeto)
	return projeto, nil
}

func (s *ProjetoService) list(ctx context.Context, filter bson.M, page, perPage int) (*models.PaginatedProjetos, error) {
	ctx, span := utils.TraceDatabaseFind(ctx, s.collection.Name(), "list")
	defer span.End()

	total, err := utils.CountDocumentsWithTimeout(ctx, s.collection, filter, utils.DefaultQueryTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to count projetos: %w", err)
	}
	projetos := []models.Projeto{}
	if err := utils.FindAllWithTimeout(ctx, s.collection, filter, &projetos, utils.DefaultQueryTimeout, utils.PageOptions(page, perPage)); err != nil {
		return nil, fmt.Errorf("failed to list projetos: %w", err)
	}
	return &models.PaginatedProjetos{
		Data: projetos,
		Pagination: models.Pagination{
			Page:       page,
			PerPage:    perPage,
			Total:      int(total),
			TotalPages: utils.TotalPages(total, perPage),
		},
	}, nil
}

// ListByCity returns a page of the projects of a city, optionally of one status
func (s *ProjetoService) ListByCity(ctx context.Context, cityID string, status models.ProjetoStatus, page, perPage int) (*models.PaginatedProjetos, error) {
	filter := bson.M{"cityId": cityID}
	if status != "" {
		if !status.Valid() {
			return nil, fmt.Errorf("%w: %q", models.ErrInvalidStatus, status)
		}
		filter["status"] = status
	}
	return s.list(ctx, filter, page, perPage)
}

// ListMine returns a page of the caller's projects
func (s *ProjetoService) ListMine(ctx context.Context, userID string, page, perPage int) (*models.PaginatedProjetos, error) {
	return s.list(ctx, bson.M{"userId": userID}, page, perPage)
}

// Evaluate records a reviewer score, recomputes the final score and moves a
// submitted project into review.
func (s *ProjetoService) Evaluate(ctx context.Context, id, avaliador string, input models.AvaliacaoInput) (*models.Projeto, error) {
	if input.Nota < 0 || input.Nota > 10 {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidNota, input.Nota)
	}
	projeto, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !projeto.Status.CanTransition(models.ProjetoEmAvaliacao) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidStatusTransition, projeto.Status, models.ProjetoEmAvaliacao)
	}

	now := s.now().UTC()
	avaliacao := models.Avaliacao{
		Avaliador: avaliador,
		Nota:      input.Nota,
		Parecer:   input.Parecer,
		CreatedAt: now,
	}

	// Pipeline update so concurrent reviews never overwrite each other.
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"avaliacoes": bson.M{"$concatArrays": bson.A{bson.M{"$ifNull": bson.A{"$avaliacoes", bson.A{}}}, bson.M{"$literal": bson.A{avaliacao}}}},
		}}},
		{{Key: "$set", Value: bson.M{
			"notaFinal": bson.M{"$avg": "$avaliacoes.nota"},
			"status":    models.ProjetoEmAvaliacao,
			"updatedAt": now,
		}}},
	}
	if err := s.transition(ctx, projeto.ID, projeto.Status, pipeline); err != nil {
		return nil, err
	}
	s.logger.Info("projeto evaluated",
		zap.String("id", projeto.ID.Hex()),
		zap.Float64("nota", input.Nota))
	return s.Get(ctx, id)
}

// Decide closes the review of a project with approval or rejection
func (s *ProjetoService) Decide(ctx context.Context, id string, status models.ProjetoStatus) (*models.Projeto, error) {
	if status != models.ProjetoAprovado && status != models.ProjetoReprovado {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidStatus, status)
	}
	projeto, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !projeto.Status.CanTransition(status) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidStatusTransition, projeto.Status, status)
	}

	now := s.now().UTC()
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": now}}
	if err := s.transition(ctx, projeto.ID, projeto.Status, update); err != nil {
		return nil, err
	}
	projeto.Status = status
	projeto.UpdatedAt = now

	s.notify(projeto, "Resultado da avaliação",
		fmt.Sprintf("Seu projeto \"%s\" foi %s.", projeto.Titulo, status))
	return projeto, nil
}
