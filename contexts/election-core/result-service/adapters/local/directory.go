// Package localadapter projects the registry module's data into the shapes
// the result pipeline depends on. Both modules share a process; the seam
// stays a port so a network client could replace it later.
package localadapter

import (
	"context"
	"errors"

	"tallyroom/contexts/election-core/result-service/domain/entities"
	"tallyroom/contexts/election-core/result-service/ports"
	directoryerrors "tallyroom/contexts/registry/directory-service/domain/errors"
	directoryports "tallyroom/contexts/registry/directory-service/ports"
)

type CenterDirectory struct {
	Repo directoryports.Repository
}

func (d CenterDirectory) GetCenter(ctx context.Context, centerID string) (ports.CenterProjection, bool, error) {
	center, err := d.Repo.GetCenter(ctx, centerID)
	if err != nil {
		if errors.Is(err, directoryerrors.ErrCenterNotFound) {
			return ports.CenterProjection{}, false, nil
		}
		return ports.CenterProjection{}, false, err
	}
	return ports.CenterProjection{
		CenterID:         center.CenterID,
		Code:             center.Code,
		Name:             center.Name,
		Constituency:     center.Constituency,
		RegisteredVoters: center.RegisteredVoters,
		Active:           center.Active,
	}, true, nil
}

type ActorDirectory struct {
	Repo directoryports.Repository
}

func (d ActorDirectory) GetActor(ctx context.Context, actorID string) (ports.ActorProjection, bool, error) {
	agent, err := d.Repo.GetAgent(ctx, actorID)
	if err != nil {
		if errors.Is(err, directoryerrors.ErrAgentNotFound) {
			return ports.ActorProjection{}, false, nil
		}
		return ports.ActorProjection{}, false, err
	}
	return ports.ActorProjection{
		ActorID:  agent.AgentID,
		Role:     entities.Role(agent.Role),
		Approved: agent.Approved,
	}, true, nil
}
