package model

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// rotationStep decodes rotation_step_degrees, which may be a single step in
// degrees or a list of allowed angles.
type rotationStep struct {
	step   float64
	angles []float64
}

// UnmarshalJSON accepts a step in degrees or a list of angles.
func (r *rotationStep) UnmarshalJSON(data []byte) error {
	*r = rotationStep{}
	if err := json.Unmarshal(data, &r.step); err == nil {
		return nil
	}
	if err := json.Unmarshal(data, &r.angles); err != nil {
		return fmt.Errorf("rotation_step_degrees must be a number or a list of angles: %w", err)
	}
	return nil
}

// UnmarshalYAML accepts a step in degrees or a list of angles.
func (r *rotationStep) UnmarshalYAML(value *yaml.Node) error {
	*r = rotationStep{}
	if value.Kind == yaml.SequenceNode {
		return value.Decode(&r.angles)
	}
	return value.Decode(&r.step)
}

// constraintDoc is the on-disk form of a Constraint.
type constraintDoc struct {
	AllowRotation bool         `json:"allow_rotation" yaml:"allow_rotation"`
	RotationStep  rotationStep `json:"rotation_step_degrees" yaml:"rotation_step_degrees"`
	Angles        []float64    `json:"angles" yaml:"angles"`
	MinGap        float64      `json:"min_gap" yaml:"min_gap"`
}

func (c Constraint) doc() constraintDoc {
	return constraintDoc{
		AllowRotation: c.AllowRotation,
		RotationStep:  rotationStep{step: c.RotationStep},
		Angles:        c.Angles,
		MinGap:        c.MinGap,
	}
}

// apply copies a decoded document into c. A list given as
// rotation_step_degrees becomes the explicit angle list.
func (c *Constraint) apply(d constraintDoc) error {
	if len(d.RotationStep.angles) > 0 && len(d.Angles) > 0 {
		return fmt.Errorf("%w: rotation_step_degrees list and angles are both set", ErrInvalidConstraint)
	}
	c.AllowRotation = d.AllowRotation
	c.RotationStep = d.RotationStep.step
	c.Angles = d.Angles
	if len(d.RotationStep.angles) > 0 {
		c.Angles = d.RotationStep.angles
	}
	c.MinGap = d.MinGap
	return nil
}

// UnmarshalJSON accepts rotation_step_degrees as a number or a list.
func (c *Constraint) UnmarshalJSON(data []byte) error {
	d := c.doc()
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	return c.apply(d)
}

// UnmarshalYAML accepts rotation_step_degrees as a number or a list.
func (c *Constraint) UnmarshalYAML(value *yaml.Node) error {
	d := c.doc()
	if err := value.Decode(&d); err != nil {
		return err
	}
	return c.apply(d)
}
