package mcp

import (
	"context"
	"database/sql"
	"sync"

	"github.com/adamavenir/scrollback/internal/core"
	"github.com/adamavenir/scrollback/internal/db"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Server exposes channel windows over MCP on stdio.
type Server struct {
	server *mcp.Server
	tools  *ToolContext
	dbConn *sql.DB
	logger *zap.Logger
	once   sync.Once
}

// NewServer opens the project at projectPath and registers the tools.
func NewServer(projectPath, version string, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	project, err := core.DiscoverProject(projectPath)
	if err != nil {
		return nil, err
	}
	config, err := core.LoadConfig(project.Dir())
	if err != nil {
		return nil, err
	}
	loc, err := config.Location()
	if err != nil {
		return nil, err
	}

	dbConn, err := db.OpenDatabase(project)
	if err != nil {
		return nil, err
	}
	if err := db.InitSchema(dbConn); err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	logger.Info("mcp server opened project", zap.String("root", project.Root))

	tools := NewToolContext(dbConn, config, loc, logger)
	server := mcp.NewServer(&mcp.Implementation{Name: "scrollback", Version: version}, nil)
	RegisterTools(server, tools)

	return &Server{server: server, tools: tools, dbConn: dbConn, logger: logger}, nil
}

// Run serves requests on stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Close releases the database.
func (s *Server) Close() error {
	var err error
	s.once.Do(func() {
		err = s.dbConn.Close()
		s.logger.Info("mcp server closed")
	})
	return err
}
