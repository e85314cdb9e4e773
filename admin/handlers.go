// Package admin exposes the relay's control surface over HTTP: bridge
// creation and lifecycle, status introspection and relay audits.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/sirupsen/logrus"

	"github.com/tracepost/anchor-relay/anchorstore/models"
	"github.com/tracepost/anchor-relay/bridge"
	commonerrors "github.com/tracepost/anchor-relay/common/errors"
	"github.com/tracepost/anchor-relay/common/types"
	"github.com/tracepost/anchor-relay/ledgers"
)

// AnchorDirectory is the read side of the anchor-status collaborator.
type AnchorDirectory interface {
	// LookupEvent resolves the platform event behind an event id.
	LookupEvent(ctx context.Context, eventID string) (*models.Event, error)

	// AnchorResults returns the recorded anchor outcomes for one entity.
	AnchorResults(ctx context.Context, entityKind types.EntityKind, entityID string) ([]models.AnchorResult, error)
}

// Handlers bundles the dependencies of the admin endpoints.
type Handlers struct {
	manager   *bridge.Manager
	registry  ledgers.Registry
	recorder  bridge.AnchorRecorder
	directory AnchorDirectory
	logger    *logrus.Logger
}

// NewHandlers creates the admin endpoint set.
//
// Parameters:
// - manager: the bridge supervisor.
// - registry: the live ledger registry.
// - recorder: optional anchor-status collaborator passed to new bridges.
// - directory: optional read access to the anchor-status collaborator.
// - logger: the logger for logging purposes.
//
// Returns:
// - *Handlers: the new handler set.
func NewHandlers(manager *bridge.Manager, registry ledgers.Registry, recorder bridge.AnchorRecorder, directory AnchorDirectory, logger *logrus.Logger) *Handlers {
	return &Handlers{
		manager:   manager,
		registry:  registry,
		recorder:  recorder,
		directory: directory,
		logger:    logger,
	}
}

// Router builds the admin route tree.
func (h *Handlers) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/state", h.state)

	r.Route("/bridges", func(r chi.Router) {
		r.Get("/", h.listBridges)
		r.Post("/", h.createBridge)

		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", h.bridgeStatus)
			r.Delete("/", h.removeBridge)
			r.Post("/start", h.startBridge)
			r.Post("/stop", h.stopBridge)
			r.Post("/verify", h.verifyBridgedEvent)
		})
	})

	r.Get("/anchors/{kind}/{id}", h.anchorResults)

	return r
}

// createBridgeRequest is the POST /bridges payload.
type createBridgeRequest struct {
	Source              string   `json:"source"`
	Target              string   `json:"target"`
	TwoWay              bool     `json:"two_way"`
	EventTypes          []string `json:"event_types"`
	PollIntervalSeconds int      `json:"poll_interval_seconds"`
	ConfirmationBlocks  uint64   `json:"confirmation_blocks"`
	Lookback            uint64   `json:"lookback"`
}

func (h *Handlers) createBridge(w http.ResponseWriter, r *http.Request) {
	var req createBridgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	source, err := h.registry.Get(types.ChainName(req.Source))
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	target, err := h.registry.Get(types.ChainName(req.Target))
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	cfg := bridge.Config{
		SourceName:         types.ChainName(req.Source),
		TargetName:         types.ChainName(req.Target),
		Source:             source,
		Target:             target,
		EventTypes:         req.EventTypes,
		PollInterval:       time.Duration(req.PollIntervalSeconds) * time.Second,
		ConfirmationBlocks: req.ConfirmationBlocks,
		Lookback:           req.Lookback,
		Recorder:           h.recorder,
	}

	var built []*bridge.ChainBridge
	if req.TwoWay {
		forward, backward, err := bridge.NewTwoWayPair(cfg, h.logger)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		built = append(built, forward, backward)
	} else {
		b, err := bridge.NewBridge(cfg, h.logger)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		built = append(built, b)
	}

	names := make([]string, 0, len(built))
	for _, b := range built {
		if err := h.manager.AddBridge(b); err != nil {
			h.writeError(w, httpStatusFor(err), err.Error())
			return
		}
		names = append(names, b.Name())
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"bridges": names})
}

func (h *Handlers) listBridges(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"bridges": h.manager.AllStatuses()})
}

func (h *Handlers) bridgeStatus(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	status, err := h.manager.BridgeStatus(name)
	if err != nil {
		h.writeError(w, httpStatusFor(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

func (h *Handlers) removeBridge(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.manager.RemoveBridge(name); err != nil {
		h.writeError(w, httpStatusFor(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"removed": name})
}

func (h *Handlers) startBridge(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	started, err := h.manager.StartBridge(name)
	if err != nil {
		h.writeError(w, httpStatusFor(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"name": name, "started": started})
}

func (h *Handlers) stopBridge(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	stopped, err := h.manager.StopBridge(name)
	if err != nil {
		h.writeError(w, httpStatusFor(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"name": name, "stopped": stopped})
}

// verifyRequest is the POST /bridges/{name}/verify payload.
type verifyRequest struct {
	BridgeID        string `json:"bridge_id"`
	OriginalEventID string `json:"original_event_id"`
	ShipmentID      string `json:"shipment_id"`
}

func (h *Handlers) verifyBridgedEvent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BridgeID == "" || req.OriginalEventID == "" {
		h.writeError(w, http.StatusBadRequest, "bridge_id and original_event_id are required")
		return
	}

	b, err := h.manager.GetBridge(name)
	if err != nil {
		h.writeError(w, httpStatusFor(err), err.Error())
		return
	}

	if req.ShipmentID == "" && h.directory != nil {
		event, err := h.directory.LookupEvent(r.Context(), req.OriginalEventID)
		if err != nil {
			h.writeError(w, httpStatusFor(err), err.Error())
			return
		}
		req.ShipmentID = event.ShipmentID
	}

	result, err := b.VerifyBridgedEvent(r.Context(), req.BridgeID, req.OriginalEventID, req.ShipmentID)
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) anchorResults(w http.ResponseWriter, r *http.Request) {
	if h.directory == nil {
		h.writeError(w, http.StatusServiceUnavailable, "anchor store is not configured")
		return
	}

	kind := types.EntityKind(chi.URLParam(r, "kind"))
	switch kind {
	case types.EntityShipment, types.EntityEvent, types.EntityDocument:
	default:
		h.writeError(w, http.StatusBadRequest, "unknown entity kind")
		return
	}

	results, err := h.directory.AnchorResults(r.Context(), kind, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, httpStatusFor(err), err.Error())
		return
	}
	if results == nil {
		results = []models.AnchorResult{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"anchors": results})
}

func (h *Handlers) state(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Names()
	ledgerNames := make([]string, 0, len(names))
	for _, name := range names {
		ledgerNames = append(ledgerNames, name.String())
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ledgers": ledgerNames,
		"bridges": h.manager.AllStatuses(),
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// httpStatusFor maps registry errors onto response codes.
func httpStatusFor(err error) int {
	switch {
	case commonerrors.IsNotFound(err),
		errors.Is(err, commonerrors.ErrBridgeNotFound),
		errors.Is(err, commonerrors.ErrLedgerNotFound):
		return http.StatusNotFound
	case errors.Is(err, commonerrors.ErrBridgeExists),
		errors.Is(err, commonerrors.ErrLedgerExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
