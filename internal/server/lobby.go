package server

import "context"

// host fills lobbies and plays their games one after another
func (s *Server) host(ctx context.Context) error {
	for played := 0; s.cfg.Game.Games == 0 || played < s.cfg.Game.Games; played++ {
		seats, err := s.gather(ctx, s.cfg.Game.Players)
		if err != nil {
			return nil
		}

		coord, err := NewCoordinator(seats, s.logger,
			WithSeededShuffle(s.cfg.Game.SeededShuffle),
			WithCoordinatorClock(s.clock))
		if err != nil {
			closeSeats(seats)
			return err
		}

		result, err := coord.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// a failed game only ends that game
			s.logger.Warn("Game ended early", "game", coord.ID(), "error", err)
			continue
		}

		s.mu.Lock()
		s.results = append(s.results, result)
		s.mu.Unlock()
	}
	return nil
}

// gather waits for n participants with distinct names. It returns
// ctx.Err() if cancelled first, closing any seats already taken.
func (s *Server) gather(ctx context.Context, n int) ([]Seat, error) {
	seats := make([]Seat, 0, n)
	taken := make(map[string]bool, n)

	for len(seats) < n {
		select {
		case seat := <-s.joined:
			if taken[seat.Name] {
				s.logger.Warn("Rejected duplicate name", "name", seat.Name, "remote", seat.Transport.RemoteAddr())
				_ = seat.Transport.Close()
				continue
			}
			taken[seat.Name] = true
			seats = append(seats, seat)
			s.setLobby(seats)
			s.logger.Info("Player joined", "name", seat.Name, "seated", len(seats), "needed", n)
		case <-ctx.Done():
			s.setLobby(nil)
			closeSeats(seats)
			return nil, ctx.Err()
		}
	}
	s.setLobby(nil)
	return seats, nil
}

// Lobby returns the names seated for the next game
func (s *Server) Lobby() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lobby...)
}

func (s *Server) setLobby(seats []Seat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lobby = s.lobby[:0]
	for _, seat := range seats {
		s.lobby = append(s.lobby, seat.Name)
	}
}

func closeSeats(seats []Seat) {
	for _, s := range seats {
		_ = s.Transport.Close()
	}
}
