package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/bomber-grid-game/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given level name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// getSession looks up a session, normalizing lookup failures to ErrSessionNotFound
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, ErrSessionNotFound)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// sessionInfo builds the DTO for a session. The access time is read through
// the session manager, which owns it and updates it under its own lock.
func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	accessed, err := s.sessions.LastAccessed(sess.ID)
	if err != nil {
		accessed = sess.CreatedAt
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: accessed,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	return s.sessionInfo(sess, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, s.getConfigID(sess.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

// Command parses and executes one text command
func (s *gameServiceImpl) Command(ctx context.Context, sessionID, command string, reset bool) (*CommandResult, error) {
	cmd, err := engine.ParseCommand(command)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	return s.execute(sessionID, cmd, reset)
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*CommandResult, error) {
	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	return s.execute(sessionID, engine.Move(dir), reset)
}

// PlantDevice plants a bomb at the player's position
func (s *gameServiceImpl) PlantDevice(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.execute(sessionID, engine.Plant(), false)
}

// Detonate sets off every planted bomb
func (s *gameServiceImpl) Detonate(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.execute(sessionID, engine.Detonate(), false)
}

// execute runs one parsed command under the service lock
func (s *gameServiceImpl) execute(sessionID string, cmd engine.Command, reset bool) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	events := []GameEvent{}
	if reset {
		if _, err := sess.Engine.Reset(); err != nil {
			return nil, err
		}
		events = append(events, newEvent(EventReset, "Game reset to initial state", sess.Engine.GetPlayerPosition()))
	}

	out := sess.Engine.Apply(cmd)
	logCommand(sessionID, cmd, out)

	step := buildStep(1, cmd, out)
	events = append(events, outcomeEvents(cmd, out)...)

	result := &CommandResult{
		Success:   out.Accepted(),
		Command:   cmd.String(),
		Status:    out.Status,
		GameState: sess.Engine.GetState(),
		Message:   out.Message,
		Events:    events,
		Outcome:   &out,
	}
	if out.Reason != nil {
		result.Reason = out.Reason.Error()
	}
	if out.Accepted() {
		result.Step = &step
	} else if cmd.Kind == engine.CommandMove {
		result.AttemptedTo = attemptedTarget(sess.Engine, out.From, cmd.Direction)
	}

	return result, nil
}

// BulkCommands executes a command sequence, stopping at the first rejection,
// unparsable command or terminal status
func (s *gameServiceImpl) BulkCommands(ctx context.Context, sessionID string, commands []string, reset bool) (*BulkCommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkCommandResult{
		RequestedCommands: len(commands),
		Events:            make([]GameEvent, 0),
		Success:           true,
	}

	if reset {
		if _, err := sess.Engine.Reset(); err != nil {
			return nil, err
		}
		result.Events = append(result.Events, newEvent(EventReset, "Game reset to initial state", sess.Engine.GetPlayerPosition()))
	}
	result.StartPos = sess.Engine.GetPlayerPosition()

	// Limit commands to prevent abuse
	if len(commands) > engine.MaxBulkCommands {
		result.Truncated = true
		result.Limit = engine.MaxBulkCommands
		commands = commands[:engine.MaxBulkCommands]
	}

	// Parse up to the first bad command; the valid prefix still runs
	cmds := make([]engine.Command, 0, len(commands))
	var parseErr error
	for _, text := range commands {
		cmd, err := engine.ParseCommand(text)
		if err != nil {
			parseErr = err
			break
		}
		cmds = append(cmds, cmd)
	}

	wasOver := sess.Engine.IsGameOver()
	outcomes := sess.Engine.BulkApply(cmds)

	for i, out := range outcomes {
		cmd := cmds[i]
		logCommand(sessionID, cmd, out)
		result.Events = append(result.Events, outcomeEvents(cmd, out)...)

		if !out.Accepted() {
			result.Success = false
			result.StoppedOnCommand = i + 1
			result.StoppedReason = fmt.Sprintf("command %d (%s) rejected: %s", i+1, cmd, out.Message)
			result.StopReasonCode = reasonCode(out.Reason)
			if cmd.Kind == engine.CommandMove {
				result.AttemptedTo = attemptedTarget(sess.Engine, out.From, cmd.Direction)
			}
			break
		}

		result.CommandsExecuted++
		result.Destroyed += len(out.Destroyed)
		result.Steps = append(result.Steps, buildStep(i+1, cmd, out))
	}

	switch {
	case wasOver:
		result.Success = false
		result.StopReasonCode = "game_over"
		result.StoppedReason = "game is already over"
		result.StoppedOnCommand = 1
	case result.Success && len(outcomes) < len(cmds):
		// BulkApply stopped on a terminal outcome
		result.StoppedOnCommand = len(outcomes)
	case result.Success && parseErr != nil && !sess.Engine.IsGameOver():
		result.Success = false
		result.StoppedOnCommand = len(cmds) + 1
		result.StoppedReason = parseErr.Error()
		result.StopReasonCode = "invalid_command"
	}

	state := sess.Engine.GetState()
	result.GameState = state
	result.EndPos = state.Player.Pos
	result.GameOver = state.GameOver
	result.Message = state.Message
	result.PossibleMoves = state.PossibleMoves
	result.LocalView3x3 = state.LocalView3x3

	if state.GameOver {
		code := "player_died"
		if state.Victory {
			code = "victory"
		}
		result.GameOverCode = code
		if result.StopReasonCode == "" {
			result.StopReasonCode = code
		}
	}

	return result, nil
}

// Reset resets a game session to its initial layout
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	log.WithField("session", sessionID).Debug("[CMD] reset")
	return sess.Engine.Reset()
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated command history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = engine.DefaultHistoryLimit
	}
	if opts.Limit > engine.MaxHistoryPageLength {
		opts.Limit = engine.MaxHistoryPageLength
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.CommandHistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available level configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific level configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a level configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func newEvent(eventType, message string, pos engine.Position) GameEvent {
	return GameEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now(),
		Position:  pos,
	}
}

func logCommand(sessionID string, cmd engine.Command, out engine.Outcome) {
	entry := log.WithFields(log.Fields{
		"session": sessionID,
		"cmd":     cmd.String(),
		"status":  out.Status,
		"pos":     out.To.Label(),
	})
	if out.Reason != nil {
		entry = entry.WithField("reason", out.Reason)
	}
	entry.Debug("[CMD]")
}

// outcomeEvents turns a command outcome into client events
func outcomeEvents(cmd engine.Command, out engine.Outcome) []GameEvent {
	if !out.Accepted() {
		return []GameEvent{newEvent(EventRejected, out.Message, out.From)}
	}

	var events []GameEvent
	switch cmd.Kind {
	case engine.CommandMove:
		if out.From != out.To {
			events = append(events, newEvent(EventMove, fmt.Sprintf("Moved %s to %s", cmd.Direction, out.To.Label()), out.To))
		}
		if out.Collected != nil {
			events = append(events, newEvent(EventPowerUp, out.Message, out.Collected.Pos))
		}
	case engine.CommandPlant:
		events = append(events, newEvent(EventPlant, out.Message, out.Planted.Origin))
	case engine.CommandDetonate:
		events = append(events, newEvent(EventDetonate, fmt.Sprintf("%d bomb(s) detonated", len(out.Devices)), out.To))
		for _, d := range out.Destroyed {
			events = append(events, newEvent(EventDestroyed, fmt.Sprintf("%s destroyed at %s", d.Kind, d.Pos.Label()), d.Pos))
		}
	}

	switch out.Status {
	case engine.StatusPlayerDied:
		events = append(events, newEvent(EventPlayerDied, out.Message, out.To))
	case engine.StatusPlayerWon:
		events = append(events, newEvent(EventVictory, out.Message, out.To))
	}
	return events
}

func buildStep(idx int, cmd engine.Command, out engine.Outcome) StepInfo {
	step := StepInfo{
		Idx:       idx,
		Command:   cmd.String(),
		From:      out.From,
		To:        out.To,
		Status:    out.Status,
		Success:   out.Accepted(),
		Planted:   out.Planted != nil,
		Destroyed: len(out.Destroyed),
		Victory:   out.Status == engine.StatusPlayerWon,
		Died:      out.Status == engine.StatusPlayerDied,
	}
	if out.Collected != nil {
		step.Collected = string(out.Collected.Kind)
	}
	return step
}

// attemptedTarget describes the cell a rejected move tried to enter
func attemptedTarget(e *engine.GameEngine, from engine.Position, dir engine.Direction) *AttemptInfo {
	if dir.Offset() == (engine.Offset{}) {
		return nil
	}
	target := from.Add(dir.Offset(), 1)
	info := &AttemptInfo{
		Row:      target.Row,
		Col:      target.Col,
		Label:    target.Label(),
		Kind:     string(engine.Wall),
		Passable: e.Grid().IsPassable(target),
	}
	if cell, err := e.Grid().Cell(target); err == nil {
		info.Kind = string(cell.Kind)
		if cell.Kind == engine.PowerUp {
			info.Kind = string(cell.Power)
		}
	}
	return info
}

// reasonCode maps a rejection reason to a machine-friendly code
func reasonCode(reason error) string {
	switch {
	case errors.Is(reason, engine.ErrInvalidMove):
		return "blocked"
	case errors.Is(reason, engine.ErrDiagonalLocked):
		return "diagonal_locked"
	case errors.Is(reason, engine.ErrCapacityReached):
		return "capacity_reached"
	case errors.Is(reason, engine.ErrNoDevicePlanted):
		return "no_device"
	case errors.Is(reason, engine.ErrGameOver):
		return "game_over"
	default:
		return "invalid_command"
	}
}
