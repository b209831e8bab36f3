package models

// Address 内部地址结构
type Address struct {
	Name     string `json:"name"`               // 收件人
	Company  string `json:"company,omitempty"`  // 公司
	Address1 string `json:"address1"`           // 地址行 1
	Address2 string `json:"address2,omitempty"` // 地址行 2
	City     string `json:"city"`               // 城市
	Zip      string `json:"zip"`                // 邮编
	State    string `json:"state"`              // 州/省
	Country  string `json:"country"`            // 国家（ISO 3166-1 alpha-2）
	Phone    string `json:"phone,omitempty"`    // 电话
}

// Clone 复制地址，nil 安全
func (a *Address) Clone() *Address {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

// Customer 购买人信息
type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// Clone 复制购买人，nil 安全
func (c *Customer) Clone() *Customer {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
