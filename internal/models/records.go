package models

func (b Brand) RecordID() string    { return b.ID }
func (c Category) RecordID() string { return c.ID }
func (p Product) RecordID() string  { return p.ID }
func (c Customer) RecordID() string { return c.ID }
func (o Order) RecordID() string    { return o.ID }

func (b Brand) IsActive() bool    { return b.Active }
func (c Category) IsActive() bool { return c.Active }
func (p Product) IsActive() bool  { return p.Active }

func (b *Brand) SetActive(v bool)    { b.Active = v }
func (c *Category) SetActive(v bool) { c.Active = v }
func (p *Product) SetActive(v bool)  { p.Active = v }
