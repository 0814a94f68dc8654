package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gorilla/mux"
	"github.com/kokorev/ghcndaily/internal/domain"
	"github.com/kokorev/ghcndaily/internal/observability"
)

// StationFetcher makes a station's daily file available locally.
type StationFetcher interface {
	EnsureStation(ctx context.Context, stationID, dir string) (string, error)
}

// API serves inventory, station metadata and daily series queries.
type API struct {
	inventory *domain.InventoryStore
	meta      *domain.MetaStore
	fetcher   StationFetcher
	dataDir   string
	cache     *seriesCache
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewAPI creates the query API. Daily files are kept in dataDir and fetched
// through fetcher on first use; up to cacheSize expanded series are kept in
// memory.
func NewAPI(inv *domain.InventoryStore, meta *domain.MetaStore, fetcher StationFetcher, dataDir string, cacheSize int, metrics *observability.Metrics, logger *slog.Logger) *API {
	return &API{
		inventory: inv,
		meta:      meta,
		fetcher:   fetcher,
		dataDir:   dataDir,
		cache:     newSeriesCache(cacheSize),
		metrics:   metrics,
		logger:    logger,
	}
}

// CheckReadiness reports not ready while either station file holds no
// records, since every query would come back empty.
func (a *API) CheckReadiness(_ context.Context) error {
	if a.inventory.Len() == 0 {
		return errors.New("station inventory is empty")
	}
	if a.meta.Len() == 0 {
		return errors.New("station list is empty")
	}
	return nil
}

// Register mounts the API routes on r.
func (a *API) Register(r *mux.Router) {
	r.HandleFunc("/stations", a.handleStations).Methods(http.MethodGet)
	r.HandleFunc("/stations/meta", a.handleMeta).Methods(http.MethodGet)
	r.HandleFunc("/stations/{id}/daily", a.handleDaily).Methods(http.MethodGet)
}

func (a *API) handleStations(w http.ResponseWriter, r *http.Request) {
	c, err := criteriaFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, a.inventory.Filter(c))
}

// handleMeta joins explicit keys against the station list, or filters it by
// country and box when no key is given.
func (a *API) handleMeta(w http.ResponseWriter, r *http.Request) {
	if keys := queryList(r, "key"); len(keys) > 0 {
		sharedobs.WriteJSON(w, http.StatusOK, a.meta.GetMeta(keys))
		return
	}

	c, err := criteriaFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	records, err := a.meta.Filter(c)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, records)
}

func (a *API) handleDaily(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := domain.ValidateStationID(id); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	element := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("element")))
	if element == "" {
		writeError(w, http.StatusBadRequest, errors.New("element is required"))
		return
	}
	includeFlags := false
	if v := r.URL.Query().Get("flags"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("flags: %w", err))
			return
		}
		includeFlags = b
	}

	key := cacheKey(id, element, includeFlags)
	if obs, ok := a.cache.get(key); ok {
		a.metrics.SeriesCache.WithLabelValues("hit").Inc()
		sharedobs.WriteJSON(w, http.StatusOK, obs)
		return
	}
	a.metrics.SeriesCache.WithLabelValues("miss").Inc()

	path, err := a.fetcher.EnsureStation(r.Context(), id, a.dataDir)
	if err != nil {
		a.logger.Warn("station fetch failed", "station_id", id, "error", err)
		writeError(w, statusFor(err), err)
		return
	}
	obs, err := domain.ReadDailyFile(path, element, includeFlags)
	if err != nil {
		a.logger.Error("daily file unreadable", "station_id", id, "path", path, "error", err)
		writeError(w, statusFor(err), err)
		return
	}

	a.cache.put(key, obs)
	sharedobs.WriteJSON(w, http.StatusOK, obs)
}

// criteriaFromQuery reads repeated or comma-separated country, element and
// box parameters.
func criteriaFromQuery(r *http.Request) (domain.Criteria, error) {
	c := domain.Criteria{
		Countries: queryList(r, "country"),
		Elements:  queryList(r, "element"),
	}
	for _, raw := range r.URL.Query()["box"] {
		b, err := domain.ParseBox(raw)
		if err != nil {
			return domain.Criteria{}, err
		}
		c.Boxes = append(c.Boxes, b)
	}
	return c, nil
}

func queryList(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrTransfer):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
