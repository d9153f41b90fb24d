// internal/service/realtime.go - Diffusion temps réel (WebSocket)
package service

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// RealtimeServiceInterface définit les méthodes du service temps réel.
// Le contrat reste le polling des endpoints de lecture ; la diffusion
// WebSocket est un flux additif (HP du boss, résultats de duel).
type RealtimeServiceInterface interface {
	Stop()
	AddConnection(conn *websocket.Conn, actorID string)
	RemoveConnection(conn *websocket.Conn)
	Broadcast(message interface{})
	NotifyActor(actorID string, message interface{})
}

// RealtimeService implémente l'interface RealtimeServiceInterface
type RealtimeService struct {
	mu          sync.RWMutex
	connections map[*websocket.Conn]string
}

// NewRealtimeService crée une nouvelle instance du service temps réel
func NewRealtimeService() RealtimeServiceInterface {
	return &RealtimeService{
		connections: make(map[*websocket.Conn]string),
	}
}

// Stop ferme toutes les connexions
func (s *RealtimeService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.connections {
		conn.Close()
	}
	s.connections = make(map[*websocket.Conn]string)

	logrus.Info("Realtime service stopped")
}

// AddConnection enregistre une connexion WebSocket
func (s *RealtimeService) AddConnection(conn *websocket.Conn, actorID string) {
	s.mu.Lock()
	s.connections[conn] = actorID
	s.mu.Unlock()

	logrus.WithField("actor_id", actorID).Debug("WebSocket connection added")
}

// RemoveConnection supprime une connexion WebSocket
func (s *RealtimeService) RemoveConnection(conn *websocket.Conn) {
	s.mu.Lock()
	actorID, exists := s.connections[conn]
	delete(s.connections, conn)
	s.mu.Unlock()

	if exists {
		logrus.WithField("actor_id", actorID).Debug("WebSocket connection removed")
	}
}

// Broadcast diffuse un message à toutes les connexions. Les connexions en
// échec sont retirées du registre.
func (s *RealtimeService) Broadcast(message interface{}) {
	s.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(s.connections))
	for conn := range s.connections {
		conns = append(conns, conn)
	}
	s.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(message); err != nil {
			logrus.WithError(err).Debug("Dropping broken WebSocket connection")
			conn.Close()
			s.RemoveConnection(conn)
		}
	}
}

// NotifyActor envoie un message aux connexions d'un acteur donné
func (s *RealtimeService) NotifyActor(actorID string, message interface{}) {
	s.mu.RLock()
	conns := make([]*websocket.Conn, 0, 1)
	for conn, id := range s.connections {
		if id == actorID {
			conns = append(conns, conn)
		}
	}
	s.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(message); err != nil {
			conn.Close()
			s.RemoveConnection(conn)
		}
	}
}
