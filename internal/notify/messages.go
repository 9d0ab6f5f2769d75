package notify

// User-facing copy, kept in Ukrainian to match the storefront.
const (
	MsgAddedToCart     = "%s додано до кошика!"
	MsgRemovedFromCart = "%s видалено з кошика"
	MsgCartCleared     = "Кошик очищено"
	MsgCartLoaded      = "Кошик завантажено"
	MsgMaxItems        = "Максимум %d товарів у кошику"
	MsgMaxPerLine      = "Максимум %d одиниць одного товару"
	MsgCartEmpty       = "Додайте страви до кошика"
	MsgMinOrder        = "Мінімальна сума замовлення %d ₴"
	MsgClosed          = "Ресторан зараз зачинено"
	MsgWorkingHours    = "Працюємо з %s до %s"
	MsgImported        = "Імпортовано %d товарів"
	MsgImportFailed    = "Помилка імпорту кошика"
)
