// server.go - HTTP and websocket remote control of an e88 session

// Copyright (C) 2018  Steve Merrony

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package controlserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/SMerrony/e88"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Server exposes one Drone over HTTP.
type Server struct {
	drone    *e88.Drone
	router   *mux.Router
	upgrader websocket.Upgrader
}

// New builds the routes for drone.  The server never closes the drone.
func New(drone *e88.Drone) *Server {
	s := &Server{
		drone:  drone,
		router: mux.NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.initRoutes()
	return s
}

func (s *Server) initRoutes() {
	r := s.router
	r.HandleFunc("/status", s.statusHandler).Methods("GET")
	r.HandleFunc("/sticks", s.sticksHandler).Methods("PUT")
	r.HandleFunc("/sticks/websocket", s.sticksWebsocketHandler).Methods("GET")
	r.HandleFunc("/flags", s.flagsHandler).Methods("PUT")
	r.HandleFunc("/protocol", s.protocolHandler).Methods("PUT")
	r.HandleFunc("/oneshot/{command}", s.oneShotHandler).Methods("POST")
	r.HandleFunc("/transmitter/{action:start|stop}", s.transmitterHandler).Methods("POST")
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "Not found!")
	})
}

// ServeHTTP makes the Server an http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("control server listening on %s", addr)
	return http.ListenAndServe(addr, s)
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondError(w http.ResponseWriter, r *http.Request, httpStatus int, msg string) {
	resp := errorResponse{
		Error: msg,
	}

	w.Header().Set("Content-type", "application/json; charset=UTF-8")
	w.WriteHeader(httpStatus)

	json.NewEncoder(w).Encode(resp)
}

func respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-type", "application/json; charset=UTF-8")
	w.WriteHeader(http.StatusOK)

	json.NewEncoder(w).Encode(v)
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.drone.Status())
}

// sticksRequest is a partial stick update, absent fields are left alone
type sticksRequest struct {
	Roll     *float64 `json:"roll"`
	Pitch    *float64 `json:"pitch"`
	Yaw      *float64 `json:"yaw"`
	Throttle *float64 `json:"throttle"`
	Raw      bool     `json:"raw"`
}

func axis(v *float64) e88.Axis {
	if v == nil {
		return e88.Axis{}
	}
	return e88.Val(*v)
}

func (req sticksRequest) update() e88.AxesUpdate {
	return e88.AxesUpdate{
		Roll:     axis(req.Roll),
		Pitch:    axis(req.Pitch),
		Yaw:      axis(req.Yaw),
		Throttle: axis(req.Throttle),
		Raw:      req.Raw,
	}
}

func (s *Server) sticksHandler(w http.ResponseWriter, r *http.Request) {
	var req sticksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Bad request!")
		return
	}
	s.drone.SetAxes(req.update())
	respondJSON(w, s.drone.Status())
}

type flagsRequest struct {
	Rotate   *bool `json:"rotate"`
	Headless *bool `json:"headless"`
	StayHigh *bool `json:"stay_high"`
}

func toggle(b *bool) e88.Toggle {
	if b == nil {
		return e88.Unchanged
	}
	return e88.ToggleOf(*b)
}

func (s *Server) flagsHandler(w http.ResponseWriter, r *http.Request) {
	var req flagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Bad request!")
		return
	}
	s.drone.SetFlags(e88.FlagsUpdate{
		Rotate:   toggle(req.Rotate),
		Headless: toggle(req.Headless),
		StayHigh: toggle(req.StayHigh),
	})
	respondJSON(w, s.drone.Status())
}

type protocolRequest struct {
	Protocol *e88.Protocol `json:"protocol"`
}

func (s *Server) protocolHandler(w http.ResponseWriter, r *http.Request) {
	var req protocolRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if errors.Is(err, e88.ErrUnknownProtocol) {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil || req.Protocol == nil {
		respondError(w, r, http.StatusBadRequest, "Bad request! Expected {\"protocol\": \"legacy\"|\"new\"}")
		return
	}
	if err := s.drone.SetProtocol(*req.Protocol); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, s.drone.Status())
}

func (s *Server) oneShotHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cmd, err := e88.ParseOneShot(vars["command"])
	if err != nil {
		respondError(w, r, http.StatusNotFound, fmt.Sprint(err))
		return
	}
	s.drone.Trigger(cmd)
	respondJSON(w, s.drone.Status())
}

func (s *Server) transmitterHandler(w http.ResponseWriter, r *http.Request) {
	if mux.Vars(r)["action"] == "start" {
		s.drone.Start()
	} else {
		s.drone.Stop()
	}
	respondJSON(w, s.drone.Status())
}

// sticksWebsocketHandler streams stick updates, one sticksRequest per text
// message.  The sticks are recentred when the connection goes away.
func (s *Server) sticksWebsocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}
	name := "websocket-" + uuid.NewString()
	log.Println(name, "connected")

	defer func() {
		conn.Close()
		s.drone.Hover()
		log.Println(name, "disconnected, sticks recentred")
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println(name, "IN error:", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		var req sticksRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if err := conn.WriteJSON(errorResponse{Error: "Bad request!"}); err != nil {
				log.Println(name, "OUT error:", err)
				return
			}
			continue
		}
		s.drone.SetAxes(req.update())
	}
}
