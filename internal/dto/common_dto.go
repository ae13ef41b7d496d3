package dto

// IDParam ID参数, 非 uuid 在进入 service 之前以 400 拒绝
type IDParam struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// KeyParam 项目 key 参数
type KeyParam struct {
	Key string `uri:"key" binding:"required,max=255"`
}
